package server

import (
	"github.com/jonathan/applicant-tracker/internal/db"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// The API exposes a fixed projection of stored rows. Fields not listed here
// (password hashes, capability grants, internal foreign keys) never leave the server.

func toApplicationRecord(d *db.ApplicationDetail) types.ApplicationRecord {
	rec := types.ApplicationRecord{
		ID:        d.ID,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		Applicant: types.ApplicantView{
			ApplicantID: d.Applicant.ID,
			LinkedInURL: d.Applicant.LinkedInURL,
			PhoneNumber: d.Applicant.PhoneNumber,
		},
		Job: types.JobView{
			ID:        d.Job.ID,
			Title:     d.Job.Title,
			Status:    d.Job.Status,
			Location:  d.Job.Location,
			WorkModel: d.Job.WorkModel,
		},
		ApplicationNotes: make([]types.NoteView, 0, len(d.Notes)),
	}
	if u := d.Applicant.User; u != nil {
		rec.Applicant.User = types.UserView{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
		}
	}
	for _, n := range d.Notes {
		rec.ApplicationNotes = append(rec.ApplicationNotes, types.NoteView{Note: n.Note})
	}
	return rec
}

func toApplicationRecords(details []db.ApplicationDetail) []types.ApplicationRecord {
	out := make([]types.ApplicationRecord, 0, len(details))
	for i := range details {
		out = append(out, toApplicationRecord(&details[i]))
	}
	return out
}

func toNoteRecord(n *db.ApplicationNote) types.NoteRecord {
	return types.NoteRecord{
		ID:        n.ID,
		Note:      n.Note,
		CreatedBy: n.CreatedBy,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toNoteRecords(notes []db.ApplicationNote) []types.NoteRecord {
	out := make([]types.NoteRecord, 0, len(notes))
	for i := range notes {
		out = append(out, toNoteRecord(&notes[i]))
	}
	return out
}

func toJobRecords(jobs []db.Job) []types.JobRecord {
	out := make([]types.JobRecord, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, types.JobRecord{
			ID:          j.ID,
			Title:       j.Title,
			Description: j.Description,
			Location:    j.Location,
			WorkModel:   j.WorkModel,
			Status:      j.Status,
			CreatedAt:   j.CreatedAt,
			UpdatedAt:   j.UpdatedAt,
		})
	}
	return out
}

func toJobStatsRecords(stats []db.JobStats) []types.JobStatsRecord {
	out := make([]types.JobStatsRecord, 0, len(stats))
	for _, s := range stats {
		out = append(out, types.JobStatsRecord{
			Title:                s.Title,
			Status:               s.Status,
			Location:             s.Location,
			WorkModel:            s.WorkModel,
			TotalApplications:    s.TotalApplications,
			ApprovedApplications: s.ApprovedApplications,
			RejectedApplications: s.RejectedApplications,
		})
	}
	return out
}

// toUser converts db.User to types.User, excluding the password hash
func toUser(u *db.User) *types.User {
	if u == nil {
		return nil
	}
	return &types.User{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
