package singleton

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"
)

// HealthCheckTimeout 健康检查超时时间
const HealthCheckTimeout = 2 * time.Second

// ErrAlreadyRunning 已有健康实例占用端口，当前进程应直接退出
var ErrAlreadyRunning = errors.New("another instance is already running")

// Acquire 以端口占用实现单实例锁
// 端口可用时返回临时 listener（调用方关闭后交给 HTTP 服务器正式监听）；
// 端口被健康实例占用返回 ErrAlreadyRunning；
// 端口被占用但健康检查不通过视为异常状态返回错误
func Acquire(port string) (net.Listener, error) {
	listener, err := net.Listen("tcp", port)
	if err == nil {
		return listener, nil
	}

	if !isAddrInUse(err) {
		return nil, fmt.Errorf("listen %s: %w", port, err)
	}

	if isInstanceHealthy(port) {
		return nil, ErrAlreadyRunning
	}
	return nil, fmt.Errorf("port %s is taken but the health check failed", port)
}

// isAddrInUse 判断是否为地址占用错误
func isAddrInUse(err error) bool {
	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) {
		var errno syscall.Errno
		if errors.As(sysErr.Err, &errno) {
			// Windows 上是 WSAEADDRINUSE (10048)
			return errno == syscall.EADDRINUSE || errno == 10048
		}
	}
	return false
}

// isInstanceHealthy 探测占用端口的进程是否响应健康检查
func isInstanceHealthy(port string) bool {
	client := &http.Client{Timeout: HealthCheckTimeout}

	resp, err := client.Get(fmt.Sprintf("http://localhost%s/health", port))
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
