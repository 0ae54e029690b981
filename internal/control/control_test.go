package control

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cwbudde/algo-speaker/speaker"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestController(t *testing.T) (*Controller, *speaker.Engine, *fakeClock) {
	t.Helper()

	e := speaker.NewEngine()
	if err := e.Init(48000); err != nil {
		t.Fatal(err)
	}

	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}

	return New(e, WithClock(clock.Now)), e, clock
}

func TestHandleCommands(t *testing.T) {
	tests := []struct {
		name        string
		cmd         Command
		val         byte
		wantPersist bool
		check       func(s speaker.Snapshot) bool
	}{
		{"preset", CmdSetPreset, 2, true, func(s speaker.Snapshot) bool { return s.Preset == speaker.Night }},
		{"loudness", CmdSetLoudness, 1, true, func(s speaker.Snapshot) bool { return s.Loudness }},
		{"status", CmdGetStatus, 0, false, func(s speaker.Snapshot) bool { return true }},
		{"mute", CmdSetMute, 1, false, func(s speaker.Snapshot) bool { return s.Muted }},
		{"duck", CmdSetAudioDuck, 1, false, func(s speaker.Snapshot) bool { return s.AudioDuck }},
		{"normalizer", CmdSetNormalizer, 1, false, func(s speaker.Snapshot) bool { return s.Normalizer }},
		{"volume", CmdSetVolume, 42, false, func(s speaker.Snapshot) bool { return s.VolumeTrim == 42 }},
		{"volume clamped", CmdSetVolume, 200, false, func(s speaker.Snapshot) bool { return s.VolumeTrim == 100 }},
		{"bypass", CmdSetBypass, 1, false, func(s speaker.Snapshot) bool { return s.Bypass }},
		{"bass boost", CmdSetBassBoost, 7, true, func(s speaker.Snapshot) bool { return s.BassBoost }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, e, _ := newTestController(t)

			res, err := c.Handle(tt.cmd, tt.val)
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if res.Persist != tt.wantPersist {
				t.Fatalf("Persist = %v, want %v", res.Persist, tt.wantPersist)
			}
			if !tt.check(e.Snapshot()) {
				t.Fatalf("engine state not updated: %+v", e.Snapshot())
			}
		})
	}
}

func TestWriteErrors(t *testing.T) {
	c, e, _ := newTestController(t)

	if _, err := c.Write([]byte{0x01}); !errors.Is(err, ErrShortWrite) {
		t.Fatalf("short write error = %v", err)
	}
	if _, err := c.Write([]byte{0x7f, 0x01}); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("unknown command error = %v", err)
	}

	res, err := c.Write([]byte{0x01, 9})
	if !errors.Is(err, speaker.ErrInvalidArgument) {
		t.Fatalf("invalid preset error = %v", err)
	}
	if res.Persist {
		t.Fatal("rejected command requested persistence")
	}
	if e.Preset() != speaker.Office {
		t.Fatal("invalid preset changed engine state")
	}

	if _, err := c.Write([]byte{0x02, 0x01, 0xff}); err != nil {
		t.Fatalf("write with trailing byte: %v", err)
	}
}

func TestHandleBeforeInit(t *testing.T) {
	c := New(speaker.NewEngine())

	_, err := c.Handle(CmdSetMute, 1)
	if !errors.Is(err, speaker.ErrNotInitialized) {
		t.Fatalf("error = %v, want ErrNotInitialized", err)
	}
}

func TestExtendedStatus(t *testing.T) {
	c, _, clock := newTestController(t)

	if got := c.ExtendedStatus(); got[6] != 255 {
		t.Fatalf("age before first contact = %d, want 255", got[6])
	}

	for _, w := range [][]byte{
		{byte(CmdSetPreset), byte(speaker.Night)},
		{byte(CmdSetVolume), 90},
		{byte(CmdSetMute), 1},
		{byte(CmdSetLoudness), 1},
		{byte(CmdSetBassBoost), 1},
	} {
		if _, err := c.Write(w); err != nil {
			t.Fatal(err)
		}
	}

	clock.Advance(3500 * time.Millisecond)

	want := [7]byte{0x42, 2, ShieldMute | ShieldLoudness | ShieldBassBoost, 100, 80, 100, 3}
	if got := c.ExtendedStatus(); got != want {
		t.Fatalf("ExtendedStatus = %v, want %v", got, want)
	}

	clock.Advance(10 * time.Minute)
	if got := c.ExtendedStatus(); got[6] != 255 {
		t.Fatalf("age = %d, want saturation at 255", got[6])
	}
}

func TestShortWriteCountsAsContact(t *testing.T) {
	c, _, clock := newTestController(t)

	_, _ = c.Write(nil)
	if !c.LastContact().Equal(clock.Now()) {
		t.Fatal("short write did not update last contact")
	}
}

func TestStatus(t *testing.T) {
	c, _, _ := newTestController(t)

	if _, err := c.Handle(CmdSetPreset, byte(speaker.Speech)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Handle(CmdSetAudioDuck, 1); err != nil {
		t.Fatal(err)
	}

	want := [4]byte{0x01, 3, 0, 0x10}
	if got := c.Status(); got != want {
		t.Fatalf("Status = %v, want %v", got, want)
	}
}

func TestCommandString(t *testing.T) {
	if got := CmdSetBassBoost.String(); got != "set-bass-boost" {
		t.Fatalf("String = %q", got)
	}
	if got := Command(0xaa).String(); got != "command(0xaa)" {
		t.Fatalf("String = %q", got)
	}
}

func TestRun(t *testing.T) {
	c, _, _ := newTestController(t)

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan [7]byte, 16)

	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, 5*time.Millisecond, func(b [7]byte) {
			select {
			case got <- b:
			default:
			}
		})
	}()

	select {
	case b := <-got:
		if b[0] != ExtendedStatusVersion {
			t.Fatalf("notification version = %#x", b[0])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no notification")
	}

	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}
}
