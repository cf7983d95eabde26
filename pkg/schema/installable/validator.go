package installable

import (
	"fmt"
)

// ValidationError represents a structural validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator performs structural validation beyond what the JSON Schema covers.
type Validator struct{}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates a document and returns all validation errors.
func (v *Validator) Validate(doc *Document) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]bool)
	for idx, inst := range doc.Installables {
		field := fmt.Sprintf("installables[%d]", idx)

		if inst.ID == "" {
			errs = append(errs, ValidationError{Field: field + ".id", Message: "id is required"})
			continue
		}
		if seen[inst.ID] {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("duplicate id %q", inst.ID),
			})
		}
		seen[inst.ID] = true

		errs = append(errs, v.validateEntry(field, inst)...)
	}

	return errs
}

func (v *Validator) validateEntry(field string, inst *Installable) []ValidationError {
	var errs []ValidationError

	switch inst.Type {
	case TypeHelm:
		if inst.Release == "" {
			errs = append(errs, ValidationError{Field: field + ".release", Message: "release is required for helm installables"})
		}
		if inst.Name == "" {
			errs = append(errs, ValidationError{Field: field + ".name", Message: "name is required for helm installables"})
		}
		if creds := inst.RepoCredentials; creds != nil {
			if creds.Password != "" && creds.Username == "" && creds.UsernamePath == "" {
				errs = append(errs, ValidationError{
					Field:   field + ".repoCredentials",
					Message: "password given without username",
				})
			}
		}
	case TypeKubectlApply:
		if inst.URL == "" {
			errs = append(errs, ValidationError{Field: field + ".url", Message: "url is required for kubectl-apply installables"})
		}
	case TypeKubectlLabel:
		if inst.Namespace == "" {
			errs = append(errs, ValidationError{Field: field + ".namespace", Message: "namespace is required for kubectl-label installables"})
		}
		if len(inst.Labels) == 0 {
			errs = append(errs, ValidationError{Field: field + ".labels", Message: "labels are required for kubectl-label installables"})
		}
	case TypeTask:
		if inst.Command == "" {
			errs = append(errs, ValidationError{Field: field + ".command", Message: "command is required for task installables"})
		}
	case "":
		errs = append(errs, ValidationError{Field: field + ".type", Message: "type is required"})
	default:
		errs = append(errs, ValidationError{
			Field:   field + ".type",
			Message: fmt.Sprintf("unknown type %q", inst.Type),
		})
	}

	return errs
}
