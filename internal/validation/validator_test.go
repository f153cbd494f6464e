package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Username string `form:"username" validate:"required,username"`
	Password string `form:"password" validate:"required,strongpwd,maxbytes=72"`
	Level    string `form:"difficulty" validate:"omitempty,difficulty"`
}

func TestStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Secret123!": true,
		"Abcdefg1":   true,
		"abcdefg1":   false,
		"ABCDEFG1":   false,
		"Abcdefgh":   false,
		"Ab1":        false,
	}
	for pwd, ok := range cases {
		err := Struct(signupForm{Username: "alice", Password: pwd})
		if ok {
			assert.NoError(t, err, pwd)
		} else {
			assert.Error(t, err, pwd)
		}
	}
}

func TestMessageUsesFormName(t *testing.T) {
	err := Struct(signupForm{Username: "alice", Password: "weak"})
	require.Error(t, err)
	assert.Equal(t, "Password must be at least 8 characters with uppercase, lowercase and a number", Message(err))
}

func TestDifficultyAlias(t *testing.T) {
	assert.NoError(t, Struct(signupForm{Username: "bob", Password: "Secret123!", Level: "hard"}))

	err := Struct(signupForm{Username: "bob", Password: "Secret123!", Level: "extreme"})
	require.Error(t, err)
	assert.Equal(t, "Difficulty must be one of: easy, medium, hard", Message(err))
}

func TestMessageNonValidationError(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "Invalid input", Message(errors.New("boom")))
}

func TestPasswordByteLimit(t *testing.T) {
	atLimit := "Aa1" + strings.Repeat("x", 69)
	assert.NoError(t, Struct(signupForm{Username: "alice", Password: atLimit}))

	err := Struct(signupForm{Username: "alice", Password: atLimit + "x"})
	require.Error(t, err)
	assert.Equal(t, "Password must be at most 72 bytes long", Message(err))

	// multi-byte runes count by their encoded size
	err = Struct(signupForm{Username: "alice", Password: "Aa1" + strings.Repeat("é", 35)})
	require.Error(t, err)
	assert.Equal(t, "Password must be at most 72 bytes long", Message(err))
}

func TestInitRegistersOnBindingEngine(t *testing.T) {
	Init()
	type form struct {
		Username string `form:"username" binding:"required,username"`
		Password string `form:"password" binding:"required,strongpwd,maxbytes=72"`
	}
	assert.NoError(t, binding.Validator.ValidateStruct(form{Username: "alice", Password: "Secret123!"}))

	err := binding.Validator.ValidateStruct(form{Username: "al", Password: "Secret123!"})
	require.Error(t, err)
	assert.Equal(t, "Username must be 3-30 letters or digits", Message(err))
}
