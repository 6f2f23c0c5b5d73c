package handler

import (
	"testing"

	"github.com/esidoc/hr-document-service/internal/model"
)

func validMissionReq() missionReq {
	return missionReq{
		EmployeeID:      7,
		Objet:           "Séminaire national",
		LieuDestination: "Constantine",
		DateDepart:      "2026-04-01",
		DateRetour:      "2026-04-03",
		Transport:       "AVION",
	}
}

func TestBuildMissionDefaultsDepartureCity(t *testing.T) {
	m, msg := buildMission(validMissionReq())
	if msg != "" {
		t.Fatalf("buildMission: %s", msg)
	}
	if m.LieuDepart != "Alger" {
		t.Fatalf("LieuDepart = %q, want the default departure city", m.LieuDepart)
	}
}

func TestBuildMissionKeepsExplicitDepartureCity(t *testing.T) {
	req := validMissionReq()
	req.LieuDepart = "Oran"
	m, msg := buildMission(req)
	if msg != "" {
		t.Fatalf("buildMission: %s", msg)
	}
	if m.LieuDepart != "Oran" {
		t.Fatalf("LieuDepart = %q, want Oran", m.LieuDepart)
	}
}

func TestBuildMissionValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*missionReq)
	}{
		{"missing employee", func(r *missionReq) { r.EmployeeID = 0 }},
		{"missing objet", func(r *missionReq) { r.Objet = "  " }},
		{"missing destination", func(r *missionReq) { r.LieuDestination = "" }},
		{"bad date", func(r *missionReq) { r.DateDepart = "01/04/2026" }},
		{"bad transport", func(r *missionReq) { r.Transport = "BATEAU" }},
		{"bad advance date", func(r *missionReq) { r.DateAvance = "soon" }},
	}
	for _, tc := range cases {
		req := validMissionReq()
		tc.mutate(&req)
		if _, msg := buildMission(req); msg == "" {
			t.Fatalf("%s: expected a validation message", tc.name)
		}
	}
}

func TestBuildMissionAcceptsRFC3339Timestamps(t *testing.T) {
	req := validMissionReq()
	req.DateDepart = "2026-04-01T08:30:00Z"
	req.DateRetour = "2026-04-03T18:00:00+01:00"
	m, msg := buildMission(req)
	if msg != "" {
		t.Fatalf("buildMission: %s", msg)
	}
	if m.DateDepart.Hour() != 8 || m.DateDepart.Minute() != 30 {
		t.Fatalf("DateDepart = %v, time of day lost", m.DateDepart)
	}
}

func TestBuildLegsValidation(t *testing.T) {
	legs, msg := buildLegs([]legReq{{
		LieuDepart:  "Alger",
		LieuArrivee: "Oran",
		DateDepart:  "2026-04-01T08:00:00Z",
		DateArrivee: "2026-04-01T13:00:00Z",
		Transport:   "TRAIN",
	}})
	if msg != "" {
		t.Fatalf("buildLegs: %s", msg)
	}
	if len(legs) != 1 || legs[0].Transport != model.TransportTrain {
		t.Fatalf("unexpected legs: %+v", legs)
	}

	if _, msg := buildLegs([]legReq{{LieuDepart: "Alger"}}); msg == "" {
		t.Fatal("leg without arrival accepted")
	}
	if _, msg := buildLegs([]legReq{{
		LieuDepart: "Alger", LieuArrivee: "Oran",
		DateDepart: "2026-04-01", DateArrivee: "2026-04-01",
		Transport: "VELO",
	}}); msg == "" {
		t.Fatal("leg with unknown transport accepted")
	}
}
