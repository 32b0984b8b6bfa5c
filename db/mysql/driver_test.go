package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDSN(t *testing.T) {
	cases := map[string]string{
		"u:p@tcp(db:3306)/sr5":                                "u:p@tcp(db:3306)/sr5?parseTime=true&charset=utf8mb4",
		"u:p@tcp(db:3306)/sr5?loc=UTC":                        "u:p@tcp(db:3306)/sr5?loc=UTC&parseTime=true&charset=utf8mb4",
		"u:p@tcp(db:3306)/sr5?parseTime=false&charset=latin1": "u:p@tcp(db:3306)/sr5?parseTime=false&charset=latin1",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeDSN(in), in)
	}
}
