package common

import (
	"github.com/lni/dragonboat/v4/logger"
	"reflect"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    logger.LogLevel
		wantErr bool
	}{
		{"debug", logger.DEBUG, false},
		{"INFO", logger.INFO, false},
		{"warn", logger.WARNING, false},
		{"warning", logger.WARNING, false},
		{"error", logger.ERROR, false},
		{"verbose", logger.INFO, true},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseChannels(t *testing.T) {
	tests := []struct {
		in      string
		want    []ServerChannel
		wantErr bool
	}{
		{
			in: "1=window,2=store",
			want: []ServerChannel{
				{ChannelID: 1, Type: ChannelTypeWindow},
				{ChannelID: 2, Type: ChannelTypeStore},
			},
		},
		{in: " 7 = store , ", want: []ServerChannel{{ChannelID: 7, Type: ChannelTypeStore}}},
		{in: "", want: nil},
		{in: "1=clipboard", wantErr: true},
		{in: "x=window", wantErr: true},
		{in: "1", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseChannels(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseChannels(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseChannels(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestMessageTypeNames(t *testing.T) {
	for typ := MsgTSuccess; typ <= MsgTKVInfo; typ++ {
		parsed, err := ParseMessageType(typ.String())
		if err != nil || parsed != typ {
			t.Errorf("ParseMessageType(%q) = %v, %v", typ.String(), parsed, err)
		}
	}
	if !MsgTWinMaximize.IsWindowCommand() || MsgTKVSet.IsWindowCommand() {
		t.Error("IsWindowCommand misclassifies")
	}
}
