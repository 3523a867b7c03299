package model

import (
	"time"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	SubmissionStatusDraft     SubmissionStatus = "draft"
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusReviewed  SubmissionStatus = "reviewed"
	SubmissionStatusRejected  SubmissionStatus = "rejected"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusDraft, SubmissionStatusSubmitted, SubmissionStatusReviewed, SubmissionStatusRejected:
		return true
	}
	return false
}

// Editable reports whether answers may still change. Submitted records stay
// editable until a reviewer closes them.
func (s SubmissionStatus) Editable() bool {
	return s == SubmissionStatusDraft || s == SubmissionStatusSubmitted
}

// CountedStatuses are the states included in totals on the dashboard.
var CountedStatuses = []SubmissionStatus{SubmissionStatusSubmitted, SubmissionStatusReviewed}

const (
	SourceAdmin  = "admin"
	SourceMobile = "mobile"
)

type SubmissionModel struct {
	FormSubmissionID              int64            `gorm:"column:form_submission_id;primaryKey;autoIncrement" json:"form_submission_id"`
	FormSubmissionFormTypeID      int64            `gorm:"column:form_submission_form_type_id;not null;index:idx_fs_type_year_status,priority:1" json:"form_submission_form_type_id"`
	FormSubmissionSchemaVersionID *int64           `gorm:"column:form_submission_schema_version_id" json:"form_submission_schema_version_id"`
	FormSubmissionYear            int              `gorm:"column:form_submission_year;not null;index:idx_fs_type_year_status,priority:2" json:"form_submission_year"`
	FormSubmissionSource          string           `gorm:"column:form_submission_source;type:varchar(32);not null" json:"form_submission_source"`
	FormSubmissionStatus          SubmissionStatus `gorm:"column:form_submission_status;type:varchar(16);not null;index:idx_fs_type_year_status,priority:3" json:"form_submission_status"`
	FormSubmissionCreatedBy       *uuid.UUID       `gorm:"column:form_submission_created_by;type:uuid" json:"form_submission_created_by"`
	FormSubmissionSubmittedAt     *time.Time       `gorm:"column:form_submission_submitted_at" json:"form_submission_submitted_at"`
	FormSubmissionReviewedAt      *time.Time       `gorm:"column:form_submission_reviewed_at" json:"form_submission_reviewed_at,omitempty"`
	FormSubmissionReviewedBy      *uuid.UUID       `gorm:"column:form_submission_reviewed_by;type:uuid" json:"form_submission_reviewed_by,omitempty"`
	FormSubmissionReviewNote      *string          `gorm:"column:form_submission_review_note;type:text" json:"form_submission_review_note,omitempty"`

	// location tags (names from the master-data registry)
	FormSubmissionRegion   *string `gorm:"column:form_submission_region;type:varchar(150)" json:"form_submission_region"`
	FormSubmissionProvince *string `gorm:"column:form_submission_province;type:varchar(150)" json:"form_submission_province"`
	FormSubmissionCity     *string `gorm:"column:form_submission_city;type:varchar(150)" json:"form_submission_city"`
	FormSubmissionBarangay *string `gorm:"column:form_submission_barangay;type:varchar(150)" json:"form_submission_barangay"`

	FormSubmissionCreatedAt time.Time `gorm:"column:form_submission_created_at;autoCreateTime" json:"form_submission_created_at"`
	FormSubmissionUpdatedAt time.Time `gorm:"column:form_submission_updated_at;autoUpdateTime" json:"form_submission_updated_at"`
}

func (SubmissionModel) TableName() string { return "form_submissions" }
