package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRedisRejectsMalformedURL(t *testing.T) {
	rdb, err := NewRedis("not a url")
	assert.Error(t, err)
	assert.Nil(t, rdb)
}
