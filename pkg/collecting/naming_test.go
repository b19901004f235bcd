package collecting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveLogicalName(t *testing.T) {
	tests := []struct {
		name string
		env  []string
		want string
	}{
		{"match", []string{"PATH=/bin", "JOB_NAME=foo"}, "foo"},
		{"no match", []string{"PATH=/bin"}, "UNKNOWN_NAME"},
		{"empty env", nil, "UNKNOWN_NAME"},
		{"prefix is not a match", []string{"JOB_NAMESPACE=ns"}, "UNKNOWN_NAME"},
		{"prefix before exact match", []string{"JOB_NAMESPACE=ns", "JOB_NAME=api"}, "api"},
		{"first match wins", []string{"JOB_NAME=one", "JOB_NAME=two"}, "one"},
		{"value keeps later equals", []string{"JOB_NAME=a=b"}, "a=b"},
		{"empty value", []string{"JOB_NAME="}, "UNKNOWN_NAME"},
		{"bare key without value", []string{"JOB_NAME", "JOB_NAME=late"}, "UNKNOWN_NAME"},
		{"unrelated malformed entry skipped", []string{"GARBAGE", "JOB_NAME=api"}, "api"},
		{"case sensitive", []string{"job_name=lower"}, "UNKNOWN_NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLogicalName(tt.env, "JOB_NAME", "UNKNOWN_NAME"))
		})
	}
}

func TestRuntimeName(t *testing.T) {
	assert.Equal(t, "web-1", RuntimeName([]string{"/web-1"}, "abc"))
	assert.Equal(t, "web-1", RuntimeName([]string{"/web-1", "/other/alias"}, "abc"))
	assert.Equal(t, "/nested", RuntimeName([]string{"//nested"}, "abc"))
	assert.Equal(t, "plain", RuntimeName([]string{"plain"}, "abc"))
	assert.Equal(t, "0123456789ab", RuntimeName(nil, "0123456789abcdef"))
	assert.Equal(t, "short", RuntimeName([]string{"/"}, "short"))
}

func TestMetricName(t *testing.T) {
	assert.Equal(t, "checkout.svc-1.memory.rrs", MetricName("checkout", "svc-1", "memory.rrs"))
}
