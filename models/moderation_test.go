package models

import (
	"strings"
	"testing"
	"time"
)

func TestModerationRequestValidate(t *testing.T) {
	t.Parallel()

	valid := ModerationRequest{Action: ModerationMute, TargetUserID: "u1", DurationMs: 60000}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error for valid request: %v", err)
	}

	unknown := ModerationRequest{Action: "shadowban", TargetUserID: "u1"}
	if err := unknown.Validate(); err == nil {
		t.Errorf("expected error for unknown action")
	}

	noTarget := ModerationRequest{Action: ModerationKick}
	if err := noTarget.Validate(); err == nil {
		t.Errorf("expected error for missing target")
	}

	negative := ModerationRequest{Action: ModerationBan, TargetUserID: "u1", DurationMs: -1}
	if err := negative.Validate(); err == nil {
		t.Errorf("expected error for negative duration")
	}

	longReason := ModerationRequest{Action: ModerationMute, TargetUserID: "u1", Reason: strings.Repeat("x", 513)}
	if err := longReason.Validate(); err == nil {
		t.Errorf("expected error for oversized reason")
	}
}

func TestModerationRequestDuration(t *testing.T) {
	t.Parallel()

	permanent := ModerationRequest{Action: ModerationBan, TargetUserID: "u1"}
	if permanent.Duration() != nil {
		t.Errorf("expected nil duration for permanent action")
	}

	timed := ModerationRequest{Action: ModerationMute, TargetUserID: "u1", DurationMs: 90000}
	d := timed.Duration()
	if d == nil || *d != 90*time.Second {
		t.Errorf("expected 90s duration, got %v", d)
	}
}

func TestModerationRecordInEffect(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	permanent := ModerationRecord{Active: true}
	if !permanent.InEffect(now) {
		t.Errorf("active record without expiry should be in effect")
	}

	expired := ModerationRecord{Active: true, ExpiresAt: &past}
	if expired.InEffect(now) {
		t.Errorf("record expired in the past should not be in effect")
	}

	running := ModerationRecord{Active: true, ExpiresAt: &future}
	if !running.InEffect(now) {
		t.Errorf("record expiring in the future should be in effect")
	}

	closed := ModerationRecord{Active: false, ExpiresAt: &future}
	if closed.InEffect(now) {
		t.Errorf("inactive record should never be in effect")
	}
}

func TestModerationKindRequiredPermission(t *testing.T) {
	t.Parallel()

	if ModerationMute.RequiredPermission() != PermMuteMembers {
		t.Errorf("mute should require MUTE_MEMBERS")
	}
	if ModerationKick.RequiredPermission() != PermKickMembers {
		t.Errorf("kick should require KICK_MEMBERS")
	}
	if ModerationBan.RequiredPermission() != PermBanMembers {
		t.Errorf("ban should require BAN_MEMBERS")
	}
}
