package redis

import (
	"testing"

	"github.com/sifan077/Rinku/config"
)

func TestAddr(t *testing.T) {
	tests := []struct {
		cfg  config.RedisConfig
		want string
	}{
		{config.RedisConfig{}, "localhost:6379"},
		{config.RedisConfig{Host: "cache", Port: 6380}, "cache:6380"},
		{config.RedisConfig{Host: "::1"}, "[::1]:6379"},
	}

	for _, tt := range tests {
		if got := Addr(tt.cfg); got != tt.want {
			t.Errorf("Addr(%+v) = %q, want %q", tt.cfg, got, tt.want)
		}
	}
}
