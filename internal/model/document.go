package model

import "time"

// DocumentKind selects which reference prefix and counter a generated
// document draws from.  The two kinds share the same reference shape
// but count independently per calendar year.
type DocumentKind string

const (
    KindAttestation DocumentKind = "ATTESTATION" // work certificate, prefix AT
    KindMission     DocumentKind = "MISSION"     // mission order, prefix OM
)

// Prefix returns the two-letter reference prefix stamped on documents of
// this kind.
func (k DocumentKind) Prefix() string {
    if k == KindMission {
        return "OM"
    }
    return "AT"
}

// TransportMode is the closed set of transport means accepted on mission
// orders and their legs.
type TransportMode string

const (
    TransportVoiture            TransportMode = "VOITURE"             // service car
    TransportVoiturePersonnelle TransportMode = "VOITURE_PERSONNELLE" // personal car
    TransportAvion              TransportMode = "AVION"               // plane
    TransportTrain              TransportMode = "TRAIN"               // train
    TransportCommun             TransportMode = "TRANSPORT_COMMUN"    // public transport
    TransportAutre              TransportMode = "AUTRE"               // other
)

// ParseTransportMode validates a raw transport string.
func ParseTransportMode(s string) (TransportMode, bool) {
    switch TransportMode(s) {
    case TransportVoiture, TransportVoiturePersonnelle, TransportAvion,
        TransportTrain, TransportCommun, TransportAutre:
        return TransportMode(s), true
    }
    return "", false
}

// DefaultIssuer is stamped on work certificates unless the creator
// supplies another issuer name.
const DefaultIssuer = "Directeur de l'École Nationale Supérieure d'Informatique"

// WorkCertificate (attestation de travail) certifies that an employee is or
// was employed.  The reference is unique within its issuance year and the
// issuance date is set at creation and never changes.
type WorkCertificate struct {
    ID           uint64    // attestations.id
    Reference    string    // attestations.reference, e.g. AT-2026-0007
    EmployeeID   uint64    // attestations.employee_id
    EmployeeName string    // joined display name, not a column
    IssueDate    time.Time // attestations.issue_date (immutable)
    Issuer       string    // attestations.issuer
}

// MissionOrder (ordre de mission) authorizes an employee's travel.  It owns
// an ordered collection of MissionLeg children which are replaced as a whole
// on update and removed with the parent.
type MissionOrder struct {
    ID            uint64        // mission_orders.id
    Reference     string        // mission_orders.reference, e.g. OM-2026-0003
    EmployeeID    uint64        // mission_orders.employee_id (missionnaire)
    EmployeeName  string        // joined display name, not a column
    Objet         string        // mission_orders.objet
    LieuDepart    string        // mission_orders.lieu_depart (defaults to Alger)
    LieuDestination string      // mission_orders.lieu_destination
    DateDepart    time.Time     // mission_orders.date_depart
    DateRetour    time.Time     // mission_orders.date_retour
    Transport     TransportMode // mission_orders.transport
    Avance        *float64      // mission_orders.avance (nullable)
    NumeroAvance  string        // mission_orders.numero_avance
    DateAvance    *time.Time    // mission_orders.date_avance (nullable)
    LieuAvance    string        // mission_orders.lieu_avance
    NuitsHebergement uint16     // mission_orders.nuits_hebergement
    DureeJours    uint16        // mission_orders.duree_jours
    DureeHeures   uint16        // mission_orders.duree_heures
    DateCreation  time.Time     // mission_orders.date_creation (immutable)
    Responsable   string        // mission_orders.responsable, acting user's name
    Legs          []MissionLeg  // child legs ordered by departure ascending
}

// MissionLeg is one segment of a mission itinerary (outbound, return or a
// stopover).  Legs belong to exactly one order; replacing an order's legs
// swaps the entire set.
type MissionLeg struct {
    ID          uint64        // mission_legs.id
    OrderID     uint64        // mission_legs.order_id
    LieuDepart  string        // mission_legs.lieu_depart
    LieuArrivee string        // mission_legs.lieu_arrivee
    DateDepart  time.Time     // mission_legs.date_depart
    DateArrivee time.Time     // mission_legs.date_arrivee
    Transport   TransportMode // mission_legs.transport
}
