// Copyright 2025 Alibaba Group Holding Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package controller

import (
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/mem"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/alibaba/opensandbox/fsd/pkg/log"
	"github.com/alibaba/opensandbox/fsd/pkg/util/safego"
	"github.com/alibaba/opensandbox/fsd/pkg/web/model"
)

// MetricController reports host metrics and per-root disk usage.
type MetricController struct {
	*basicController
	sandbox *Sandbox
}

func NewMetricController(ctx *gin.Context) *MetricController {
	return &MetricController{basicController: newBasicController(ctx), sandbox: defaultSandbox}
}

var watchUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// GetMetrics returns one metrics snapshot.
func (c *MetricController) GetMetrics() {
	metrics, err := c.readMetrics()
	if err != nil {
		c.RespondError(
			http.StatusInternalServerError,
			model.ErrorCodeRuntimeError,
			fmt.Sprintf("error reading runtime metrics. %v", err),
		)
		return
	}

	c.RespondSuccess(metrics)
}

// WatchMetrics streams metric snapshots over a websocket once per second
// until the client disconnects or a write fails.
func (c *MetricController) WatchMetrics() {
	conn, err := watchUpgrader.Upgrade(c.ctx.Writer, c.ctx.Request, nil)
	if err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("websocket upgrade failed. %v", err),
		)
		return
	}
	defer conn.Close()

	stop := make(chan struct{})
	var once sync.Once
	closeStop := func() { once.Do(func() { close(stop) }) }

	safego.Go(func() {
		<-c.ctx.Request.Context().Done()
		closeStop()
	})

	wait.Until(func() {
		metrics, err := c.readMetrics()
		if err != nil {
			log.Error("WatchMetrics read error: %v", err)
			if writeErr := conn.WriteJSON(map[string]string{"error": err.Error()}); writeErr != nil {
				closeStop()
			}
			return
		}
		if err := conn.WriteJSON(metrics); err != nil {
			log.Error("WatchMetrics write error: %v", err)
			closeStop()
		}
	}, time.Second, stop)
}

// readMetrics collects host cpu/mem usage plus the disk usage of every
// volume backing an alias root. Only alias names appear in the result.
func (c *MetricController) readMetrics() (*model.Metrics, error) {
	metric := model.NewMetrics()

	metric.CpuCount = float64(runtime.GOMAXPROCS(-1))
	cpuPercent, err := cpu.Percent(time.Second, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get CPU percent: %w", err)
	}
	if len(cpuPercent) > 0 {
		metric.CpuUsedPct = cpuPercent[0]
	}

	memInfo, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to get memory info: %w", err)
	}
	metric.MemTotalMiB = float64(memInfo.Total) / 1024 / 1024
	metric.MemUsedMiB = float64(memInfo.Used) / 1024 / 1024

	if c.sandbox != nil && c.sandbox.Registry != nil {
		for _, alias := range c.sandbox.Registry.Aliases() {
			usage, err := disk.Usage(alias.RealRoot)
			if err != nil {
				log.Warning("failed to read disk usage for alias %s: %v", alias.Name, err)
				continue
			}
			metric.Roots = append(metric.Roots, model.RootUsage{
				Alias:      alias.Name,
				TotalBytes: usage.Total,
				FreeBytes:  usage.Free,
				UsedPct:    usage.UsedPercent,
			})
		}
	}

	return metric, nil
}
