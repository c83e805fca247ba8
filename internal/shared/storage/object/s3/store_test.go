package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/export.json", want: "user/export.json"},
		{name: "simple prefix", prefix: "root", key: "user/export.json", want: "root/user/export.json"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/export.json", want: "root/user/export.json"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/export.json", want: "root/user/export.json"},
		{name: "nested prefix", prefix: "root/sub", key: "user/export.json", want: "root/sub/user/export.json"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}
