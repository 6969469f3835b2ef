package pubsub

import (
	"context"
	"testing"

	"github.com/littlemija/littlemija-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	cases := []struct {
		name      string
		projectID string
		topic     string
		want      string
	}{
		{"short id", "shop", "orders", "projects/shop/topics/orders"},
		{"full name kept", "shop", "projects/other/topics/orders", "projects/other/topics/orders"},
		{"trimmed", "shop", "  orders ", "projects/shop/topics/orders"},
		{"empty topic", "shop", "", ""},
		{"missing project", "", "orders", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := topicResourceName(tc.projectID, tc.topic); got != tc.want {
				t.Fatalf("topicResourceName(%q, %q) = %q, want %q", tc.projectID, tc.topic, got, tc.want)
			}
		})
	}
}

func TestNewClientRequiresProject(t *testing.T) {
	if _, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{OrdersTopic: "orders"}, nil); err != errProjectIDRequired {
		t.Fatalf("expected errProjectIDRequired, got %v", err)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	if c.Publisher("orders") != nil {
		t.Fatal("expected nil publisher")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
}
