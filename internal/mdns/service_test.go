package mdns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstants(t *testing.T) {
	assert.Equal(t, "_brainly._tcp", ServiceType)
	assert.Equal(t, "v1", APIVersion)
}

func TestAdvertisement_TXTRecords(t *testing.T) {
	ad := Advertisement{Name: "Brainly Server", Version: "1.2.3", Port: 3000}

	var got []string
	for _, r := range ad.txtRecords() {
		got = append(got, string(r))
	}

	assert.Equal(t, []string{
		"name=Brainly Server",
		"version=1.2.3",
		"api=v1",
		"path=/api/v1",
	}, got)
}

func TestAdvertisement_Validate(t *testing.T) {
	assert.NoError(t, Advertisement{Name: "x", Port: 3000}.validate())
	assert.Error(t, Advertisement{Port: 3000}.validate())
	assert.Error(t, Advertisement{Name: "x"}.validate())
	assert.Error(t, Advertisement{Name: "x", Port: 70000}.validate())
}

func TestService_StartRejectsInvalid(t *testing.T) {
	svc := NewService(nil)

	err := svc.Start(Advertisement{Name: "", Port: 3000})
	require.Error(t, err)
	assert.False(t, svc.Running())
}

func TestService_StopIsIdempotent(t *testing.T) {
	svc := NewService(nil)

	svc.Stop()
	svc.Stop()
	assert.False(t, svc.Running())
}

func TestService_Start(t *testing.T) {
	// Needs a system bus and an Avahi daemon; most CI hosts have neither.
	svc := NewService(nil)

	if err := svc.Start(Advertisement{Name: "brainly-test", Version: "test", Port: 3999}); err != nil {
		t.Skipf("avahi unavailable: %v", err)
	}
	assert.True(t, svc.Running())

	svc.Stop()
	assert.False(t, svc.Running())
}
