package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/tsinghua-fib-lab/optitraffic/utils/config"
	"go.mongodb.org/mongo-driver/mongo"
)

// Recorder 运行记录写入器
// 功能：把运行汇总指标追加到JSON结果文件，并在配置了MongoDB时同步写入一份
// 说明：File与URI均为空时为空操作
type Recorder struct {
	file   string
	client *mongo.Client
	coll   *mongo.Collection
}

// NewRecorder 创建运行记录写入器
// 参数：c-输出配置
// 返回：写入器实例
// 说明：URI非空时立即建立MongoDB连接，连接失败由底层panic暴露
func NewRecorder(c config.Output) *Recorder {
	r := &Recorder{file: c.File}
	if c.URI != "" {
		r.client = mongoutil.NewClient(c.URI)
		r.coll = r.client.Database(c.DB).Collection(c.Col)
	}
	return r
}

// Write 写入一条运行记录
// 算法说明：
// 1. JSON文件：读出既有记录数组（文件缺失视为空数组），追加后整体重写
// 2. MongoDB（若配置）：对集合执行一次InsertOne
func (r *Recorder) Write(record RunRecord) error {
	if r.file != "" {
		records, err := ReadRecords(r.file)
		if err != nil {
			return err
		}
		records = append(records, record)
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("output: encode records: %w", err)
		}
		if err := os.WriteFile(r.file, data, 0o644); err != nil {
			return fmt.Errorf("output: write %s: %w", r.file, err)
		}
		log.Infof("run %s appended to %s (%d records)", record.RunID, r.file, len(records))
	}
	if r.coll != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := r.coll.InsertOne(ctx, record); err != nil {
			return fmt.Errorf("output: insert into mongo: %w", err)
		}
		log.Infof("run %s inserted into %s.%s", record.RunID, r.coll.Database().Name(), r.coll.Name())
	}
	return nil
}

// Close 断开MongoDB连接
func (r *Recorder) Close() {
	if r.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.client.Disconnect(ctx); err != nil {
			log.Errorf("disconnect mongo: %v", err)
		}
	}
}
