package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/load"
	"github.com/shirou/gopsutil/mem"
	"github.com/sirupsen/logrus"
)

type systemInfo struct {
	Hostname      string  `json:"hostname"`
	UptimeSeconds uint64  `json:"uptime_seconds"`
	Load1         float64 `json:"load1"`
	Load5         float64 `json:"load5"`
	Load15        float64 `json:"load15"`
	MemoryTotal   uint64  `json:"memory_total"`
	MemoryUsed    uint64  `json:"memory_used"`
	MemoryPercent float64 `json:"memory_percent"`
}

// getSystem reports the health of the box the dashboard backend runs on.
func getSystem(ctx *gin.Context) {
	var info systemInfo

	if hostInfo, err := host.Info(); err != nil {
		logrus.Errorf("Failed to read host info, err [%s]", err)
	} else {
		info.Hostname = hostInfo.Hostname
		info.UptimeSeconds = hostInfo.Uptime
	}

	if loadAvg, err := load.Avg(); err != nil {
		logrus.Errorf("Failed to read load average, err [%s]", err)
	} else {
		info.Load1 = loadAvg.Load1
		info.Load5 = loadAvg.Load5
		info.Load15 = loadAvg.Load15
	}

	if virtualMemory, err := mem.VirtualMemory(); err != nil {
		logrus.Errorf("Failed to read memory info, err [%s]", err)
	} else {
		info.MemoryTotal = virtualMemory.Total
		info.MemoryUsed = virtualMemory.Used
		info.MemoryPercent = virtualMemory.UsedPercent
	}

	ctx.JSON(http.StatusOK, info)
}
