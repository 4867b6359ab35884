package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceKey(t *testing.T) {
	inst := &ServiceInstance{Name: "stockdesk-api", Host: "10.0.0.5", Port: 5000}
	assert.Equal(t, "10.0.0.5:5000", inst.Addr())
	assert.Equal(t, "/services/stockdesk-api/10.0.0.5:5000", instanceKey("/services/", inst))
}

func TestParseInstance(t *testing.T) {
	inst, err := parseInstance("stockdesk-grpc", "10.0.0.5:50061")
	require.NoError(t, err)
	assert.Equal(t, &ServiceInstance{Name: "stockdesk-grpc", Host: "10.0.0.5", Port: 50061}, inst)

	_, err = parseInstance("x", "no-port")
	assert.Error(t, err)
	_, err = parseInstance("x", "host:abc")
	assert.Error(t, err)
}
