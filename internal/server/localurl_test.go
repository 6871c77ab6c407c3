package server

import (
	"net"
	"testing"
)

func TestBuildLocalURL(t *testing.T) {
	tests := []struct {
		name string
		ip   net.IP
		port int
		want string
	}{
		{
			name: "resolved address",
			ip:   net.ParseIP("10.0.0.5"),
			port: 8058,
			want: "http://10.0.0.5:8058",
		},
		{
			name: "unresolvable host falls back to homepage",
			ip:   nil,
			port: 8058,
			want: "https://github.com/willcgage/wirelessboard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildLocalURL(tt.ip, tt.port); got != tt.want {
				t.Errorf("buildLocalURL(%v, %d) = %q, want %q", tt.ip, tt.port, got, tt.want)
			}
		})
	}
}
