package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTenant_HasSubscriber(t *testing.T) {
	t.Parallel()

	tenant := Tenant{Subscribers: []string{"a@b.com", "c@d.com"}}

	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{"present", "a@b.com", true},
		{"second entry", "c@d.com", true},
		{"absent", "x@y.com", false},
		{"case sensitive", "A@B.com", false},
		{"untrimmed input is not normalized here", " a@b.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tenant.HasSubscriber(tt.email))
		})
	}
}

func TestTenant_CloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := Tenant{APIKey: "k", SenderEmail: "s@x.com", Subscribers: []string{"a@b.com"}}
	c := orig.Clone()
	c.Subscribers[0] = "changed@b.com"
	c.Subscribers = append(c.Subscribers, "new@b.com")

	assert.Equal(t, []string{"a@b.com"}, orig.Subscribers)
	assert.Equal(t, "s@x.com", c.SenderEmail)
}

func TestTenant_CloneNilSubscribers(t *testing.T) {
	t.Parallel()

	orig := Tenant{APIKey: "k"}
	c := orig.Clone()

	assert.NotNil(t, c.Subscribers)
	assert.Empty(t, c.Subscribers)
	assert.Equal(t, 0, c.SubscriberCount())
}

func TestAPIKey_Prefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abcdef", APIKey("abcdefghij").Prefix())
	assert.Equal(t, "abc", APIKey("abc").Prefix())
	assert.Equal(t, "abcdefghij", APIKey("abcdefghij").String())
}
