package downlink

import (
	"bytes"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		cmd     Command
		value   uint16
		port    uint8
		data    []byte
		wantErr bool
	}{
		{CmdSendInterval, 10, 1, []byte{0x00, 0x0A}, false},
		{CmdSendInterval, 1440, 1, []byte{0x05, 0xA0}, false},
		{CmdCleanInterval, 3, 2, []byte{3}, false},
		{CmdRequestReport, 1, 9, []byte{1}, false},
		{CmdResyncInterval, 256, 0, nil, true},
		{Command(10), 1, 0, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.String(), func(t *testing.T) {
			dl, err := Encode(tt.cmd, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Encode succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if dl.Port != tt.port || !bytes.Equal(dl.Data, tt.data) {
				t.Errorf("Encode = port %d % x, want port %d % x", dl.Port, dl.Data, tt.port, tt.data)
			}
		})
	}
}

func TestParseCommand(t *testing.T) {
	for _, name := range CommandNames() {
		c, err := ParseCommand(name)
		if err != nil {
			t.Fatalf("ParseCommand(%q): %v", name, err)
		}
		if c.String() != name {
			t.Errorf("ParseCommand(%q).String() = %q", name, c.String())
		}
	}
	if _, err := ParseCommand("reboot"); err == nil {
		t.Error("ParseCommand(reboot) succeeded")
	}
	if names := CommandNames(); len(names) != 9 || names[0] != "send-interval" || names[8] != "report" {
		t.Errorf("CommandNames() = %v", names)
	}
}
