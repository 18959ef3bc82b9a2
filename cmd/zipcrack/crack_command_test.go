package main

import (
	"strings"
	"testing"
	"time"

	"zipcrack/internal/testsupport"
)

func TestApplyCrackFlagsRoundsSubMillisecondDurations(t *testing.T) {
	cmd := newCrackCommand(newCommandContext(nil))
	if err := cmd.Flags().Set("poll-interval", "500us"); err != nil {
		t.Fatalf("set poll-interval: %v", err)
	}
	if err := cmd.Flags().Set("join-timeout", "1500us"); err != nil {
		t.Fatalf("set join-timeout: %v", err)
	}
	flags := crackFlags{pollInterval: 500 * time.Microsecond, joinTimeout: 1500 * time.Microsecond}

	cfg, err := applyCrackFlags(cmd, testsupport.NewConfig(t), flags)
	if err != nil {
		t.Fatalf("applyCrackFlags: %v", err)
	}
	if cfg.Search.PollIntervalMS != 1 {
		t.Fatalf("expected poll interval 1ms, got %d", cfg.Search.PollIntervalMS)
	}
	if cfg.Search.JoinTimeoutMS != 2 {
		t.Fatalf("expected join timeout 2ms, got %d", cfg.Search.JoinTimeoutMS)
	}
}

func TestApplyCrackFlagsRejectsNonPositiveDurations(t *testing.T) {
	cmd := newCrackCommand(newCommandContext(nil))
	if err := cmd.Flags().Set("poll-interval", "0s"); err != nil {
		t.Fatalf("set poll-interval: %v", err)
	}

	_, err := applyCrackFlags(cmd, testsupport.NewConfig(t), crackFlags{})
	if err == nil {
		t.Fatal("expected error for zero poll interval")
	}
	if !strings.Contains(err.Error(), "--poll-interval") {
		t.Fatalf("expected flag name in error, got %v", err)
	}
}

func TestApplyCrackFlagsLeavesBaseUntouched(t *testing.T) {
	cmd := newCrackCommand(newCommandContext(nil))
	if err := cmd.Flags().Set("length", "3"); err != nil {
		t.Fatalf("set length: %v", err)
	}
	base := testsupport.NewConfig(t, testsupport.WithKeyspace("ab", 2))

	cfg, err := applyCrackFlags(cmd, base, crackFlags{length: 3})
	if err != nil {
		t.Fatalf("applyCrackFlags: %v", err)
	}
	if cfg.Search.Length != 3 || base.Search.Length != 2 {
		t.Fatalf("expected override on copy only, got copy=%d base=%d", cfg.Search.Length, base.Search.Length)
	}
}
