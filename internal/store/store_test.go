package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayoutPath(t *testing.T) {
	tests := []struct {
		name    string
		layout  Layout
		secret  string
		want    string
		wantErr error
	}{
		{"defaults", Layout{}, "mail", "password-store/mail", nil},
		{"nested", Layout{}, "mail/work", "password-store/mail/work", nil},
		{"name kept as given", Layout{}, " mail/", "password-store/ mail/", nil},
		{"custom namespace", Layout{Namespace: "secret/team/"}, "db", "secret/team/db", nil},
		{"blank namespace", Layout{Namespace: "  "}, "db", "password-store/db", nil},
		{"empty name", Layout{}, "", "", ErrEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.layout.Path(tt.secret)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLayoutField(t *testing.T) {
	assert.Equal(t, "data", Layout{}.field())
	assert.Equal(t, "value", Layout{Field: " value "}.field())
}
