package model

import "testing"

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"ADMIN", "RH", "SG"} {
		if _, ok := ParseRole(raw); !ok {
			t.Fatalf("ParseRole(%q) rejected a valid role", raw)
		}
	}
	for _, raw := range []string{"", "admin", "SUPERUSER", "RH "} {
		if r, ok := ParseRole(raw); ok {
			t.Fatalf("ParseRole(%q) accepted invalid input as %q", raw, r)
		}
	}
}

func TestParseEmployeeCategory(t *testing.T) {
	for _, raw := range []string{"ENSEIGNANT", "ADMINISTRATIF", "TECHNIQUE", "OUVRIER"} {
		if _, ok := ParseEmployeeCategory(raw); !ok {
			t.Fatalf("ParseEmployeeCategory(%q) rejected a valid category", raw)
		}
	}
	if _, ok := ParseEmployeeCategory("enseignant"); ok {
		t.Fatal("category matching must be case sensitive")
	}
}

func TestParseTransportMode(t *testing.T) {
	for _, raw := range []string{"VOITURE", "VOITURE_PERSONNELLE", "AVION", "TRAIN", "TRANSPORT_COMMUN", "AUTRE"} {
		if _, ok := ParseTransportMode(raw); !ok {
			t.Fatalf("ParseTransportMode(%q) rejected a valid mode", raw)
		}
	}
	if _, ok := ParseTransportMode("BATEAU"); ok {
		t.Fatal("unknown transport mode accepted")
	}
}

func TestParseActionAndTargetKinds(t *testing.T) {
	for _, raw := range []string{"CREATE", "UPDATE", "DELETE", "VIEW", "LOGIN", "LOGOUT", "OTHER"} {
		if _, ok := ParseActionKind(raw); !ok {
			t.Fatalf("ParseActionKind(%q) rejected a valid kind", raw)
		}
	}
	if _, ok := ParseActionKind("READ"); ok {
		t.Fatal("unknown action kind accepted")
	}
	for _, raw := range []string{"USER", "EMPLOYEE", "ATTESTATION", "MISSION", "SYSTEM"} {
		if _, ok := ParseTargetKind(raw); !ok {
			t.Fatalf("ParseTargetKind(%q) rejected a valid kind", raw)
		}
	}
	if _, ok := ParseTargetKind("DOCUMENT"); ok {
		t.Fatal("unknown target kind accepted")
	}
}

func TestDocumentKindPrefix(t *testing.T) {
	if KindAttestation.Prefix() != "AT" {
		t.Fatalf("attestation prefix = %q", KindAttestation.Prefix())
	}
	if KindMission.Prefix() != "OM" {
		t.Fatalf("mission prefix = %q", KindMission.Prefix())
	}
}

func TestFullNameForms(t *testing.T) {
	e := Employee{FirstName: "Amina", LastName: "BENALI"}
	if e.FullName() != "BENALI Amina" {
		t.Fatalf("employee full name = %q, want last name first", e.FullName())
	}
	u := User{FirstName: "Karim", LastName: "Meziane"}
	if u.FullName() == "" {
		t.Fatal("user full name empty")
	}
}
