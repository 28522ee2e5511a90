package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() map[string]any {
	return map[string]any{
		"name":    "  Anna Kowalska ",
		"email":   " Anna@Example.COM ",
		"message": "I would like to ask about the Aqua fragrance.",
	}
}

func TestValidateContact_Success(t *testing.T) {
	res := ValidateContact(validInput())

	require.True(t, res.Success, "errors: %v", res.Errors)
	require.NotNil(t, res.Data)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "Anna Kowalska", res.Data.Name)
	assert.Equal(t, "anna@example.com", res.Data.Email)
	assert.Equal(t, "I would like to ask about the Aqua fragrance.", res.Data.Message)
}

func TestValidateContact_SanitizesOutput(t *testing.T) {
	in := validInput()
	in["name"] = `O'Brien "Jr" <b>`
	in["message"] = "Please call me back at 5/10, thanks a lot."

	res := ValidateContact(in)

	require.True(t, res.Success, "errors: %v", res.Errors)
	assert.Equal(t, "O&#x27;Brien &quot;Jr&quot; &lt;b&gt;", res.Data.Name)
	assert.Equal(t, "Please call me back at 5&#x2F;10, thanks a lot.", res.Data.Message)
	assert.Equal(t, "anna@example.com", res.Data.Email, "email is not escaped")
}

func TestValidateContact_NotAnObject(t *testing.T) {
	for _, raw := range []any{nil, "text", []any{1, 2}, 12.5} {
		res := ValidateContact(raw)
		assert.False(t, res.Success)
		assert.Equal(t, []string{"Invalid input data"}, res.Errors)
	}
}

func TestValidateContact_SchemaErrorsAccumulate(t *testing.T) {
	res := ValidateContact(map[string]any{})

	assert.False(t, res.Success)
	assert.Nil(t, res.Data)
	assert.ElementsMatch(t, []string{
		"Name is required",
		"Email is required",
		"Message is required",
	}, res.Errors)
}

func TestValidateContact_FieldRules(t *testing.T) {
	cases := []struct {
		name  string
		field string
		value any
		want  string
	}{
		{"blank name", "name", "    ", "Name cannot be empty or contain only whitespace"},
		{"long name", "name", strings.Repeat("a", 101), "Name must be less than 100 characters"},
		{"name wrong type", "name", 42.0, "Name must be a string"},
		{"bad email", "email", "not-an-email", "Please enter a valid email address"},
		{"long email", "email", strings.Repeat("a", 250) + "@example.com", "Email must be less than 254 characters"},
		{"short message", "message", "too short", "Message must be at least 10 characters long"},
		{"long message", "message", strings.Repeat("hello ", 200), "Message must be less than 1000 characters"},
		{"collapsing whitespace", "message", "a        b", "Message must contain meaningful content"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			in[tc.field] = tc.value

			res := ValidateContact(in)

			assert.False(t, res.Success)
			assert.Contains(t, res.Errors, tc.want)
		})
	}
}

func TestValidateContact_BlankNameReportedOnce(t *testing.T) {
	in := validInput()
	in["name"] = "   "

	res := ValidateContact(in)

	assert.Equal(t, []string{"Name cannot be empty or contain only whitespace"}, res.Errors)
}

func TestValidateContact_WrongTypeReportedOnce(t *testing.T) {
	in := validInput()
	in["name"] = 5.0
	in["message"] = []any{"hello"}

	res := ValidateContact(in)

	assert.False(t, res.Success)
	assert.Equal(t, []string{"Name must be a string", "Message must be a string"}, res.Errors)
}

func TestValidateContact_SchemaShortCircuitsSecurityChecks(t *testing.T) {
	in := validInput()
	in["email"] = "bad"
	in["message"] = "<script>alert(1)</script> CONGRATULATIONS"

	res := ValidateContact(in)

	assert.Equal(t, []string{"Please enter a valid email address"}, res.Errors)
}

func TestValidateContact_SecurityErrorsAccumulate(t *testing.T) {
	in := map[string]any{
		"name":    `<iframe src="x"></iframe>`,
		"email":   "someone@tempmail.org",
		"message": "<script>alert('hi')</script> you are a winner",
	}

	res := ValidateContact(in)

	assert.False(t, res.Success)
	assert.Equal(t, []string{
		"Name contains suspicious content",
		"Message contains suspicious content",
		"Email domain is not allowed",
		"Message appears to be spam",
	}, res.Errors)
}

func TestValidateContact_RepeatedCharactersAreSpam(t *testing.T) {
	in := validInput()
	in["message"] = "aaaaaaaaaa"

	res := ValidateContact(in)

	assert.False(t, res.Success)
	assert.Equal(t, []string{"Message appears to be spam"}, res.Errors)
}

func TestValidateContact_DisposableDomain(t *testing.T) {
	in := validInput()
	in["email"] = "test@tempmail.org"

	res := ValidateContact(in)

	assert.False(t, res.Success)
	assert.Equal(t, []string{"Email domain is not allowed"}, res.Errors)
}
