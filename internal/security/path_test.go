package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"relative path", "config.json", false},
		{"nested path", "data/audit.db", false},
		{"absolute path", "/var/lib/channelguard/audit.db", false},
		{"dotted filename", "audit.v2.db", false},
		{"empty", "", true},
		{"traversal", "../secrets.json", true},
		{"embedded traversal", "data/../../etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
