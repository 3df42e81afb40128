package main

import "testing"

func TestNormalizeChatID(t *testing.T) {
	cases := []struct {
		in   int64
		want int64
	}{
		{-1001234567890, 1234567890}, // supergroup
		{-987654, 987654},            // basic group
		{555, 555},                   // already normalized
		{-100777, 777},
	}

	for _, tc := range cases {
		if got := normalizeChatID(tc.in); got != tc.want {
			t.Fatalf("normalizeChatID(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
