package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"phishing-detection-api/services"
)

var receivedAt = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func TestParseFeedMessage(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    feedEntry
		wantErr bool
	}{
		{
			name: "defaults",
			raw:  `{"url":"https://login.secure-bank.co.uk/verify"}`,
			want: feedEntry{
				URL: "https://login.secure-bank.co.uk/verify", Domain: "secure-bank.co.uk",
				IsPhishing: true, Confidence: 1, Source: "external_api", ReceivedAt: receivedAt,
			},
		},
		{
			name: "explicit fields",
			raw:  `{"url":"http://10.0.0.5/x","confidence":0.4,"is_phishing":false,"source":"openphish"}`,
			want: feedEntry{
				URL: "http://10.0.0.5/x", Domain: "10.0.0.5",
				IsPhishing: false, Confidence: 0.4, Source: "openphish", ReceivedAt: receivedAt,
			},
		},
		{name: "invalid json", raw: `{not json}`, wantErr: true},
		{name: "missing url", raw: `{"confidence":0.5}`, wantErr: true},
		{name: "non http scheme", raw: `{"url":"javascript:alert(1)"}`, wantErr: true},
		{name: "confidence out of range", raw: `{"url":"https://a.com","confidence":1.2}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFeedMessage([]byte(tt.raw), receivedAt)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseFeedMessage() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFeedMessage() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseFeedMessage() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

type fakeStore struct {
	entries []feedEntry
	err     error
}

func (f *fakeStore) Upsert(ctx context.Context, e feedEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

type fakePublisher struct {
	events []services.BlacklistEvent
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	if channel != services.ChannelBlacklist {
		return errors.New("unexpected channel " + channel)
	}
	p.events = append(p.events, message.(services.BlacklistEvent))
	return nil
}

func TestProcessMessage(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	c := &collector{store: store, pub: pub, now: func() time.Time { return receivedAt }}

	if !c.processMessage(context.Background(), "phishguard/feeds/openphish", []byte(`{"url":"https://evil.tk/login"}`)) {
		t.Fatal("processMessage() = false, want true")
	}
	if c.processMessage(context.Background(), "phishguard/feeds/openphish", []byte(`{"url":""}`)) {
		t.Error("processMessage() accepted an empty url")
	}

	if len(store.entries) != 1 || store.entries[0].Domain != "evil.tk" {
		t.Errorf("stored = %+v", store.entries)
	}
	if len(pub.events) != 1 || pub.events[0].Action != "upsert" || !pub.events[0].Timestamp.Equal(receivedAt) {
		t.Errorf("published = %+v", pub.events)
	}
}

func TestProcessMessageStoreFailure(t *testing.T) {
	pub := &fakePublisher{}
	c := &collector{store: &fakeStore{err: errors.New("db down")}, pub: pub, now: time.Now}

	if c.processMessage(context.Background(), "t", []byte(`{"url":"https://a.com"}`)) {
		t.Error("processMessage() = true despite store failure")
	}
	if len(pub.events) != 0 {
		t.Error("failed entries must not be published")
	}
}
