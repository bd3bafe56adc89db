package repo

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func fuzzyPattern(t *testing.T, f bson.M, field string) primitive.Regex {
	t.Helper()
	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	for _, clause := range or {
		m := clause.(bson.M)
		if re, ok := m[field].(primitive.Regex); ok {
			return re
		}
	}
	t.Fatalf("no %s clause in filter", field)
	return primitive.Regex{}
}

func TestFuzzyFilterTreatsInputAsLiteral(t *testing.T) {
	tests := []struct {
		name string
		q    string
		want string
	}{
		{"plain text passes through", "jane", "jane"},
		{"dot escaped", "jane@example.com", `jane@example\.com`},
		{"metacharacters neutralized", ".*@(", `\.\*@\(`},
		{"anchors neutralized", "^admin$", `\^admin\$`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fuzzyFilter(tt.q)
			for _, field := range []string{"email", "fullName"} {
				re := fuzzyPattern(t, f, field)
				require.Equal(t, tt.want, re.Pattern)
				require.Equal(t, "i", re.Options)
			}
		})
	}
}
