// Package stats computes the dashboard summary.  Every call recomputes
// each aggregate fresh from storage: there is no caching and no snapshot
// consistency between the three sections, only point-in-time counts.
package stats

import (
	"context"
	"time"

	"github.com/esidoc/hr-document-service/internal/model"
	"github.com/esidoc/hr-document-service/internal/repository"
)

// DefaultWindowDays is the trailing window applied when the caller does
// not specify one.
const DefaultWindowDays = 30

// Aggregator reads across the identity store, the document repositories
// and the audit trail.
type Aggregator struct {
	Users        *repository.UserRepo
	Employees    *repository.EmployeeRepo
	Certificates *repository.CertificateRepo
	Missions     *repository.MissionRepo
	Activity     *repository.ActivityRepo
}

// UserStats summarizes the identity store.
type UserStats struct {
	TotalUsers  int64                `json:"total_users"`
	ActiveUsers int64                `json:"active_users"`
	UsersByRole map[model.Role]int64 `json:"users_by_role"`
	RecentUsers []RecentUser         `json:"recent_users"`
}

// RecentUser is the trimmed user projection exposed on the dashboard.
type RecentUser struct {
	ID        uint64     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// DocumentStats summarizes employees and generated documents.
type DocumentStats struct {
	TotalEmployees      int64                            `json:"total_employees"`
	ActiveEmployees     int64                            `json:"active_employees"`
	TotalAttestations   int64                            `json:"total_attestations"`
	TotalMissions       int64                            `json:"total_missions"`
	EmployeesByCategory map[model.EmployeeCategory]int64 `json:"employees_by_category"`
	RecentAttestations  []RecentCertificate              `json:"recent_attestations"`
	RecentMissions      []RecentMission                  `json:"recent_missions"`
}

// RecentCertificate is the trimmed attestation projection exposed on the
// dashboard.
type RecentCertificate struct {
	ID           uint64    `json:"id"`
	Reference    string    `json:"reference"`
	EmployeeID   uint64    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	IssueDate    time.Time `json:"issue_date"`
	Issuer       string    `json:"issuer"`
}

// RecentMission is the trimmed mission-order projection exposed on the
// dashboard.  Legs and advance details are omitted.
type RecentMission struct {
	ID              uint64    `json:"id"`
	Reference       string    `json:"reference"`
	EmployeeID      uint64    `json:"employee_id"`
	EmployeeName    string    `json:"employee_name"`
	Objet           string    `json:"objet"`
	LieuDestination string    `json:"lieu_destination"`
	DateDepart      time.Time `json:"date_depart"`
	DateRetour      time.Time `json:"date_retour"`
	DateCreation    time.Time `json:"date_creation"`
}

// ActivityStats summarizes the audit trail inside the window.
type ActivityStats struct {
	ActivityByDate   map[string]int64           `json:"activity_by_date"`
	ActivityByType   map[model.ActionKind]int64 `json:"activity_by_type"`
	RecentActivities []RecentActivity           `json:"recent_activities"`
}

// RecentActivity is the trimmed audit projection exposed on the dashboard.
// Request metadata (ip, user agent) stays out of the summary.
type RecentActivity struct {
	ID          uint64           `json:"id"`
	ActorID     *uint64          `json:"actor_id"`
	ActorName   string           `json:"actor_name"`
	Action      model.ActionKind `json:"action"`
	Target      model.TargetKind `json:"target"`
	TargetID    *uint64          `json:"target_id"`
	Description string           `json:"description"`
	Timestamp   time.Time        `json:"timestamp"`
}

// Summary bundles the three independent aggregates.
type Summary struct {
	UserStats     UserStats     `json:"user_stats"`
	DocumentStats DocumentStats `json:"document_stats"`
	ActivityStats ActivityStats `json:"activity_stats"`
}

// Summarize computes the dashboard for the trailing windowDays-day window.
// windowDays <= 0 falls back to DefaultWindowDays.
func (a *Aggregator) Summarize(ctx context.Context, windowDays int) (Summary, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays)
	var s Summary

	uc, err := a.Users.Counts(ctx)
	if err != nil {
		return s, err
	}
	recentUsers, err := a.Users.RecentSince(ctx, cutoff, 5)
	if err != nil {
		return s, err
	}
	s.UserStats = UserStats{
		TotalUsers:  uc.Total,
		ActiveUsers: uc.Active,
		UsersByRole: uc.ByRole,
		RecentUsers: make([]RecentUser, 0, len(recentUsers)),
	}
	for _, u := range recentUsers {
		s.UserStats.RecentUsers = append(s.UserStats.RecentUsers, RecentUser{
			ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName,
			Role: u.Role, CreatedAt: u.CreatedAt,
		})
	}

	ec, err := a.Employees.Counts(ctx)
	if err != nil {
		return s, err
	}
	totalCerts, err := a.Certificates.Count(ctx)
	if err != nil {
		return s, err
	}
	totalMissions, err := a.Missions.Count(ctx)
	if err != nil {
		return s, err
	}
	recentCerts, err := a.Certificates.RecentSince(ctx, cutoff, 5)
	if err != nil {
		return s, err
	}
	recentMissions, err := a.Missions.RecentSince(ctx, cutoff, 5)
	if err != nil {
		return s, err
	}
	s.DocumentStats = DocumentStats{
		TotalEmployees:      ec.Total,
		ActiveEmployees:     ec.Active,
		TotalAttestations:   totalCerts,
		TotalMissions:       totalMissions,
		EmployeesByCategory: ec.ByCategory,
		RecentAttestations:  make([]RecentCertificate, 0, len(recentCerts)),
		RecentMissions:      make([]RecentMission, 0, len(recentMissions)),
	}
	for _, cert := range recentCerts {
		s.DocumentStats.RecentAttestations = append(s.DocumentStats.RecentAttestations, RecentCertificate{
			ID: cert.ID, Reference: cert.Reference, EmployeeID: cert.EmployeeID,
			EmployeeName: cert.EmployeeName, IssueDate: cert.IssueDate, Issuer: cert.Issuer,
		})
	}
	for _, m := range recentMissions {
		s.DocumentStats.RecentMissions = append(s.DocumentStats.RecentMissions, RecentMission{
			ID: m.ID, Reference: m.Reference, EmployeeID: m.EmployeeID,
			EmployeeName: m.EmployeeName, Objet: m.Objet, LieuDestination: m.LieuDestination,
			DateDepart: m.DateDepart, DateRetour: m.DateRetour, DateCreation: m.DateCreation,
		})
	}

	byDate, err := a.Activity.CountByDateSince(ctx, cutoff)
	if err != nil {
		return s, err
	}
	byType, err := a.Activity.CountByActionSince(ctx, cutoff)
	if err != nil {
		return s, err
	}
	recentActs, err := a.Activity.List(ctx, repository.ActivityFilter{StartDate: cutoff, Limit: 10})
	if err != nil {
		return s, err
	}
	s.ActivityStats = ActivityStats{
		ActivityByDate:   byDate,
		ActivityByType:   byType,
		RecentActivities: make([]RecentActivity, 0, len(recentActs)),
	}
	for _, rec := range recentActs {
		s.ActivityStats.RecentActivities = append(s.ActivityStats.RecentActivities, RecentActivity{
			ID: rec.ID, ActorID: rec.ActorID, ActorName: rec.ActorName,
			Action: rec.Action, Target: rec.Target, TargetID: rec.TargetID,
			Description: rec.Description, Timestamp: rec.Timestamp,
		})
	}
	return s, nil
}
