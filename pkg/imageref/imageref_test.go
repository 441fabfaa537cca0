package imageref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		Input      string
		Repository string
		Tag        string
	}{
		{
			Input:      "nginx",
			Repository: "library/nginx",
			Tag:        "latest",
		},
		{
			Input:      "nginx:1.25",
			Repository: "library/nginx",
			Tag:        "1.25",
		},
		{
			Input:      "redis:7",
			Repository: "library/redis",
			Tag:        "7",
		},
		{
			Input:      "bitnami/postgresql:16.1",
			Repository: "bitnami/postgresql",
			Tag:        "16.1",
		},
		{
			Input:      "postgres@sha256:4f1c8b2e28b3dd1edbcf0f0e6e2c1b82a1f5f1b6caed9a3fc1b9a0487b4b52af",
			Repository: "library/postgres",
			Tag:        "latest",
		},
	}

	for _, test := range cases {
		t.Run(test.Input, func(t *testing.T) {
			ref, err := Parse(test.Input)
			require.NoError(t, err)

			assert.Equal(t, test.Repository, ref.Repository)
			assert.Equal(t, test.Tag, ref.Tag)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("UPPERCASE/not allowed")
	assert.Error(t, err)
}

func TestHubURL(t *testing.T) {
	official, err := Parse("nginx:1.25")
	require.NoError(t, err)
	assert.Equal(t, "https://hub.docker.com/r/_/nginx/tags", official.HubURL())

	namespaced, err := Parse("grafana/grafana:10.2")
	require.NoError(t, err)
	assert.Equal(t, "https://hub.docker.com/r/grafana/grafana/tags", namespaced.HubURL())
}
