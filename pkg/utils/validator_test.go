package utils

import "testing"

type signup struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
	Rating    *int   `json:"rating" validate:"required,min=1,max=5"`
}

func TestValidateStruct(t *testing.T) {
	five, zero := 5, 0

	tests := []struct {
		name string
		in   signup
		want map[string]string
	}{
		{
			name: "valid",
			in:   signup{Email: "a@b.io", Password: "password1", Password2: "password1", Rating: &five},
		},
		{
			name: "uses json names",
			in:   signup{Email: "nope", Password: "short", Password2: "other", Rating: &five},
			want: map[string]string{
				"email":     "Invalid email format",
				"password":  "Minimum length is 8",
				"password2": "Passwords do not match",
			},
		},
		{
			name: "missing pointer is required",
			in:   signup{Email: "a@b.io", Password: "password1", Password2: "password1"},
			want: map[string]string{"rating": "This field is required"},
		},
		{
			name: "numeric bound",
			in:   signup{Email: "a@b.io", Password: "password1", Password2: "password1", Rating: &zero},
			want: map[string]string{"rating": "Must be at least 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateStruct(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d errors, got %v", len(tt.want), got)
			}
			for field, msg := range tt.want {
				if got[field] != msg {
					t.Fatalf("field %s: expected %q, got %q", field, msg, got[field])
				}
			}
		})
	}
}

func TestFormatValidationErrorsIsSorted(t *testing.T) {
	got := FormatValidationErrors(map[string]string{"b": "two", "a": "one"})
	if got != "a: one; b: two" {
		t.Fatalf("unexpected format: %q", got)
	}
}
