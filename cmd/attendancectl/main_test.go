package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandsReturnErrors(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")

	cases := []struct {
		args []string
		want string
	}{
		{[]string{"create-admin", "--name", "Root", "--email", "root@example.com"}, `STORAGE_BACKEND=postgres, got "memory"`},
		{[]string{"reset-password", "--email", "root@example.com"}, `STORAGE_BACKEND=postgres, got "memory"`},
		{[]string{"export", "--email", "root@example.com"}, `required flag(s) "month" not set`},
		{[]string{"create-admin", "--email", "root@example.com"}, `required flag(s) "name" not set`},
	}
	for _, tc := range cases {
		cmd := newRootCmd()
		cmd.SetArgs(tc.args)
		err := cmd.Execute()
		assert.ErrorContains(t, err, tc.want, tc.args[0])
	}
}
