package chat

import (
	"testing"

	errs "AProject/tools/errs"
)

func TestParseInboundFrameSendMessage(t *testing.T) {
	raw := []byte(`{"type":"SEND_MESSAGE","toUserId":"42@chat.example.org","message":"hello"}`)
	f, err := ParseInboundFrame(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Type != FrameSendMessage {
		t.Fatalf("type=%s", f.Type)
	}
	if f.ToUserID != "42@chat.example.org" || f.Message != "hello" {
		t.Fatalf("decoded fields: %+v", f)
	}
}

func TestParseInboundFrameUnknownTag(t *testing.T) {
	raw := []byte(`{"type":"DELETE_EVERYTHING","toUserId":"1","message":"x"}`)
	_, err := ParseInboundFrame(raw)
	if err == nil {
		t.Fatal("expected error for unknown tag")
	}
	if !errs.ErrFrameUnsupported.Is(err) {
		t.Fatalf("expected unsupported-frame error, got %v", err)
	}
}

func TestParseInboundFrameMalformed(t *testing.T) {
	for _, raw := range []string{`not json`, `{"toUserId":"1"}`, `[]`, ``} {
		if _, err := ParseInboundFrame([]byte(raw)); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseRecipient(t *testing.T) {
	cases := []struct {
		in     string
		id     int64
		server string
		ok     bool
	}{
		{"42", 42, "", true},
		{"42@chat.example.org", 42, "chat.example.org", true},
		{"7@", 7, "", true},
		{"abc", 0, "", false},
		{"-5", 0, "", false},
		{"0", 0, "", false},
		{"@chat.example.org", 0, "", false},
		{"", 0, "", false},
	}
	for _, c := range cases {
		id, server, err := ParseRecipient(c.in)
		if c.ok {
			if err != nil {
				t.Fatalf("%q: unexpected error %v", c.in, err)
			}
			if id != c.id || server != c.server {
				t.Fatalf("%q: got (%d,%q), want (%d,%q)", c.in, id, server, c.id, c.server)
			}
			continue
		}
		if err == nil {
			t.Fatalf("%q: expected error", c.in)
		}
		if !errs.ErrBadRecipient.Is(err) {
			t.Fatalf("%q: expected bad-recipient error, got %v", c.in, err)
		}
	}
}
