package model

import "testing"

func TestSubmissionStatus(t *testing.T) {
	cases := []struct {
		s        SubmissionStatus
		valid    bool
		editable bool
	}{
		{SubmissionStatusDraft, true, true},
		{SubmissionStatusSubmitted, true, true},
		{SubmissionStatusReviewed, true, false},
		{SubmissionStatusRejected, true, false},
		{"archived", false, false},
	}
	for _, tc := range cases {
		if tc.s.Valid() != tc.valid || tc.s.Editable() != tc.editable {
			t.Errorf("%s: valid=%v editable=%v", tc.s, tc.s.Valid(), tc.s.Editable())
		}
	}
}
