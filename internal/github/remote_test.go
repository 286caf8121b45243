package github

import "testing"

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Remote
		ok   bool
	}{
		{name: "https", raw: "https://github.com/borntyping/switchbox.git", want: Remote{Owner: "borntyping", Name: "switchbox"}, ok: true},
		{name: "https_no_suffix", raw: "https://github.com/borntyping/switchbox", want: Remote{Owner: "borntyping", Name: "switchbox"}, ok: true},
		{name: "scp_like", raw: "git@github.com:borntyping/switchbox.git", want: Remote{Owner: "borntyping", Name: "switchbox"}, ok: true},
		{name: "ssh", raw: "ssh://git@github.com/borntyping/switchbox.git", want: Remote{Owner: "borntyping", Name: "switchbox"}, ok: true},
		{name: "ssh_no_user", raw: "ssh://github.com/borntyping/switchbox", want: Remote{Owner: "borntyping", Name: "switchbox"}, ok: true},
		{name: "trailing_slash", raw: "https://github.com/borntyping/switchbox/", want: Remote{Owner: "borntyping", Name: "switchbox"}, ok: true},
		{name: "other_host", raw: "https://gitlab.com/borntyping/switchbox.git"},
		{name: "other_host_ssh", raw: "git@gitlab.com:borntyping/switchbox.git"},
		{name: "missing_name", raw: "https://github.com/borntyping"},
		{name: "nested_path", raw: "https://github.com/borntyping/switchbox/tree/main"},
		{name: "empty", raw: ""},
		{name: "local_path", raw: "/srv/git/switchbox.git"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRemoteURL(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ParseRemoteURL(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("ParseRemoteURL(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}
