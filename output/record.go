// 运行记录输出，支持JSON结果文件与可选的MongoDB写入
package output

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/uuid"
)

// RunRecord 一次完整仿真运行的汇总指标
type RunRecord struct {
	RunID          string  `json:"run_id" bson:"run_id"`                   // 运行唯一标识
	Timestamp      string  `json:"timestamp" bson:"timestamp"`             // 运行结束时刻（RFC3339）
	Strategy       string  `json:"strategy" bson:"strategy"`               // 信控策略（fixed|marl）
	VehiclesPassed int32   `json:"vehicles_passed" bson:"vehicles_passed"` // 累计通过车辆数
	WaitTime       float64 `json:"wait_time" bson:"wait_time"`             // 累计等待时间（秒）
}

// NewRunRecord 创建运行记录
// 功能：分配运行ID、打上当前时间戳并把等待时间保留两位小数
func NewRunRecord(strategy string, vehiclesPassed int32, waitTime float64) RunRecord {
	return RunRecord{
		RunID:          uuid.NewString(),
		Timestamp:      time.Now().Format(time.RFC3339),
		Strategy:       strategy,
		VehiclesPassed: vehiclesPassed,
		WaitTime:       math.Round(waitTime*100) / 100,
	}
}

// ReadRecords 从JSON结果文件读取全部运行记录
// 参数：path-结果文件路径
// 返回：记录列表；文件不存在时返回空列表而不报错
func ReadRecords(path string) ([]RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("output: read %s: %w", path, err)
	}
	var records []RunRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("output: parse %s: %w", path, err)
	}
	return records, nil
}
