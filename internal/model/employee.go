package model

import "time"

// EmployeeCategory classifies an employee's corps.  Closed enumeration
// checked with ParseEmployeeCategory at the request boundary.
type EmployeeCategory string

const (
    CategoryEnseignant    EmployeeCategory = "ENSEIGNANT"    // teaching / research staff
    CategoryAdministratif EmployeeCategory = "ADMINISTRATIF" // administrative staff
    CategoryTechnique     EmployeeCategory = "TECHNIQUE"     // technical staff
    CategoryOuvrier       EmployeeCategory = "OUVRIER"       // professional workers
)

// ParseEmployeeCategory validates a raw category string.
func ParseEmployeeCategory(s string) (EmployeeCategory, bool) {
    switch EmployeeCategory(s) {
    case CategoryEnseignant, CategoryAdministratif, CategoryTechnique, CategoryOuvrier:
        return EmployeeCategory(s), true
    }
    return "", false
}

// EmploymentStatus tracks whether an employee is still in service.
type EmploymentStatus string

const (
    StatusActif     EmploymentStatus = "ACTIF"     // currently employed
    StatusDemission EmploymentStatus = "DEMISSION" // resigned
    StatusRetraite  EmploymentStatus = "RETRAITE"  // retired
)

// ParseEmploymentStatus validates a raw status string.
func ParseEmploymentStatus(s string) (EmploymentStatus, bool) {
    switch EmploymentStatus(s) {
    case StatusActif, StatusDemission, StatusRetraite:
        return EmploymentStatus(s), true
    }
    return "", false
}

// Employee is the HR profile documents are issued against.  Canonical
// display order is last_name then first_name.  Dates are DATE columns;
// only the date part is significant.
//
// Fields:
//  ID             - primary key identifier.
//  FirstName      - given name.
//  LastName       - family name.
//  BirthDate      - date of birth.
//  BirthPlace     - place of birth.
//  Grade          - administrative grade.
//  Fonction       - function held.
//  Categorie      - closed enumeration (see EmployeeCategory).
//  HireDate       - date of hire.
//  DepartureDate  - date of departure, nil while employed.
//  Service        - department / service name (optional).
//  Statut         - employment status enumeration.
//  IDDocNumber    - identity document number (optional).
//  IDDocIssueDate - identity document issue date (optional).
//  IDDocIssuePlace- identity document issue place (optional).
type Employee struct {
    ID             uint64           // employees.id
    FirstName      string           // employees.first_name
    LastName       string           // employees.last_name
    BirthDate      time.Time        // employees.birth_date
    BirthPlace     string           // employees.birth_place
    Grade          string           // employees.grade
    Fonction       string           // employees.fonction
    Categorie      EmployeeCategory // employees.categorie
    HireDate       time.Time        // employees.hire_date
    DepartureDate  *time.Time       // employees.departure_date (nullable)
    Service        string           // employees.service
    Statut         EmploymentStatus // employees.statut
    IDDocNumber    string           // employees.id_doc_number
    IDDocIssueDate *time.Time       // employees.id_doc_issue_date (nullable)
    IDDocIssuePlace string          // employees.id_doc_issue_place
}

// FullName returns the canonical "LAST First" display form.
func (e Employee) FullName() string {
    return e.LastName + " " + e.FirstName
}
