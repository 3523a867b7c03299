package dto

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	answerDTO "ghg_inventory_backend/internals/features/forms/answers/dto"
	"ghg_inventory_backend/internals/features/forms/submissions/model"
	"ghg_inventory_backend/internals/features/forms/submissions/service"
	helper "ghg_inventory_backend/internals/helpers"
)

/* =========================================================
   Requests
========================================================= */

type CreateSubmissionRequest struct {
	FormTypeID int64   `json:"form_type_id" validate:"required,gt=0"`
	Year       int     `json:"year" validate:"required"`
	Source     string  `json:"source" validate:"omitempty,max=32"`
	Region     *string `json:"region"`
	Province   *string `json:"province"`
	City       *string `json:"city"`
	Barangay   *string `json:"barangay"`
}

func (r CreateSubmissionRequest) ToInput(createdBy *uuid.UUID) service.CreateInput {
	return service.CreateInput{
		FormTypeID: r.FormTypeID,
		Year:       r.Year,
		Source:     r.Source,
		CreatedBy:  createdBy,
		Location: service.LocationTags{
			Region:   r.Region,
			Province: r.Province,
			City:     r.City,
			Barangay: r.Barangay,
		},
	}
}

// PatchSubmissionRequest corrects metadata. Location tags accept null to clear.
type PatchSubmissionRequest struct {
	FormTypeID *int64                     `json:"form_type_id" validate:"omitempty,gt=0"`
	Year       *int                       `json:"year"`
	Region     helper.UpdateField[string] `json:"region"`
	Province   helper.UpdateField[string] `json:"province"`
	City       helper.UpdateField[string] `json:"city"`
	Barangay   helper.UpdateField[string] `json:"barangay"`
}

func (r PatchSubmissionRequest) ToPatch() service.MetaPatch {
	return service.MetaPatch{
		Year:       r.Year,
		FormTypeID: r.FormTypeID,
		Region:     r.Region,
		Province:   r.Province,
		City:       r.City,
		Barangay:   r.Barangay,
	}
}

const (
	ModeDraft  = "draft"
	ModeSubmit = "submit"
)

type SaveAnswersRequest struct {
	Answers map[string]json.RawMessage `json:"answers" validate:"required"`
	Mode    string                     `json:"mode" validate:"omitempty,oneof=draft submit"`
}

func (r *SaveAnswersRequest) Normalize() {
	r.Mode = strings.ToLower(strings.TrimSpace(r.Mode))
	if r.Mode == "" {
		r.Mode = ModeDraft
	}
}

type SubmitRequest struct {
	Answers map[string]json.RawMessage `json:"answers"`
}

type ReviewRequest struct {
	Status string  `json:"status" validate:"required,oneof=reviewed rejected"`
	Note   *string `json:"note" validate:"omitempty,max=2000"`
}

type ListSubmissionsQuery struct {
	FormTypeID int64  `query:"form_type_id"`
	Year       int    `query:"year"`
	Status     string `query:"status"`
	Source     string `query:"source"`
	Region     string `query:"region"`
	Province   string `query:"province"`
	City       string `query:"city"`
	Barangay   string `query:"barangay"`
}

func (q ListSubmissionsQuery) ToFilter() service.ListFilter {
	return service.ListFilter{
		FormTypeID: q.FormTypeID,
		Year:       q.Year,
		Status:     model.SubmissionStatus(strings.ToLower(strings.TrimSpace(q.Status))),
		Source:     q.Source,
		Region:     q.Region,
		Province:   q.Province,
		City:       q.City,
		Barangay:   q.Barangay,
	}
}

/* =========================================================
   Responses
========================================================= */

type SubmissionResponse struct {
	model.SubmissionModel
	Answers []answerDTO.AnswerResponse `json:"answers,omitempty"`
}

func FromSubmission(m model.SubmissionModel) SubmissionResponse {
	return SubmissionResponse{SubmissionModel: m}
}

func FromSubmissions(list []model.SubmissionModel) []SubmissionResponse {
	out := make([]SubmissionResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromSubmission(m))
	}
	return out
}

func FromDetail(d *service.SubmissionDetail) SubmissionResponse {
	return SubmissionResponse{
		SubmissionModel: d.Submission,
		Answers:         answerDTO.FromAnswers(d.Answers),
	}
}
