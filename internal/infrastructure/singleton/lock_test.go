package singleton

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAcquire_PortAvailable 测试端口可用时拿到锁
func TestAcquire_PortAvailable(t *testing.T) {
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := listener.Addr().String()
	listener.Close()

	result, err := Acquire(port)
	require.NoError(t, err)
	require.NotNil(t, result)
	defer result.Close()
}

// TestAcquire_PortInUseUnhealthy 测试端口被占用但无健康检查响应
func TestAcquire_PortInUseUnhealthy(t *testing.T) {
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer listener.Close()

	result, err := Acquire(listener.Addr().String())
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.NotErrorIs(t, err, ErrAlreadyRunning, "不健康的占用是异常而非正常退出信号")
}
