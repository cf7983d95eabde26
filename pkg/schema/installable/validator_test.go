package installable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_PerTypeRequiredFields(t *testing.T) {
	tests := []struct {
		name      string
		inst      *Installable
		wantField string
	}{
		{
			name:      "helm missing release",
			inst:      &Installable{ID: "x", Type: TypeHelm, Name: "chart"},
			wantField: "installables[0].release",
		},
		{
			name:      "helm missing chart name",
			inst:      &Installable{ID: "x", Type: TypeHelm, Release: "rel"},
			wantField: "installables[0].name",
		},
		{
			name:      "kubectl-apply missing url",
			inst:      &Installable{ID: "x", Type: TypeKubectlApply},
			wantField: "installables[0].url",
		},
		{
			name:      "kubectl-label missing namespace",
			inst:      &Installable{ID: "x", Type: TypeKubectlLabel, Labels: map[string]string{"a": "b"}},
			wantField: "installables[0].namespace",
		},
		{
			name:      "kubectl-label missing labels",
			inst:      &Installable{ID: "x", Type: TypeKubectlLabel, Namespace: "ns"},
			wantField: "installables[0].labels",
		},
		{
			name:      "task missing command",
			inst:      &Installable{ID: "x", Type: TypeTask},
			wantField: "installables[0].command",
		},
		{
			name:      "unknown type",
			inst:      &Installable{ID: "x", Type: "terraform"},
			wantField: "installables[0].type",
		},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.Validate(&Document{Installables: []*Installable{tt.inst}})
			if assert.NotEmpty(t, errs) {
				assert.Equal(t, tt.wantField, errs[0].Field)
			}
		})
	}
}

func TestValidate_ValidDocument(t *testing.T) {
	override := false
	doc := &Document{Installables: []*Installable{
		{ID: "a", Type: TypeHelm, Release: "rel", Name: "chart"},
		{ID: "b", Type: TypeKubectlApply, URL: "./manifest.yaml"},
		{ID: "c", Type: TypeKubectlLabel, Namespace: "team1.namespace",
			Labels: map[string]string{"team": "one"}, Override: &override},
		{ID: "d", Type: TypeTask, Command: "./setup.sh"},
	}}

	assert.Empty(t, NewValidator().Validate(doc))
}

func TestValidate_PasswordWithoutUsername(t *testing.T) {
	doc := &Document{Installables: []*Installable{
		{ID: "a", Type: TypeHelm, Release: "rel", Name: "chart",
			RepoCredentials: &RepoCredentials{Password: "p"}},
	}}

	errs := NewValidator().Validate(doc)
	assert.NotEmpty(t, errs)
}

func TestOverrideLabels(t *testing.T) {
	yes := true
	no := false
	assert.True(t, (&Installable{}).OverrideLabels())
	assert.True(t, (&Installable{Override: &yes}).OverrideLabels())
	assert.False(t, (&Installable{Override: &no}).OverrideLabels())
}
