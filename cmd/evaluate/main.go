// 对比工具：读取运行记录文件，对固定周期与MARL两种信控策略做统计检验，
// 并把两项指标的逐次运行曲线渲染为HTML图表
package main

import (
	"flag"
	"fmt"
	"os"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/optitraffic/output"
	"github.com/tsinghua-fib-lab/optitraffic/stats"
)

var (
	inputPath  = flag.String("input", "results.json", "运行记录JSON文件路径")
	chartsPath = flag.String("charts", "", "图表HTML输出路径，为空则不渲染")

	log = logrus.WithField("module", "evaluate")
)

// splitByStrategy 把运行记录按信控策略分成两组指标序列
func splitByStrategy(records []output.RunRecord) (fixedPassed, marlPassed, fixedWait, marlWait []float64) {
	for _, r := range records {
		switch r.Strategy {
		case "fixed":
			fixedPassed = append(fixedPassed, float64(r.VehiclesPassed))
			fixedWait = append(fixedWait, r.WaitTime)
		case "marl":
			marlPassed = append(marlPassed, float64(r.VehiclesPassed))
			marlWait = append(marlWait, r.WaitTime)
		default:
			log.Warnf("run %s: skipping unknown strategy %q", r.RunID, r.Strategy)
		}
	}
	return
}

// metricLine 两组指标的逐次运行折线图
func metricLine(title string, fixed, marl []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
	)

	n := max(len(fixed), len(marl))
	var runs []string
	for i := 0; i < n; i++ {
		runs = append(runs, fmt.Sprintf("%d", i+1))
	}
	line = line.SetXAxis(runs)

	toItems := func(values []float64) []opts.LineData {
		items := make([]opts.LineData, 0, len(values))
		for _, v := range values {
			items = append(items, opts.LineData{Value: v})
		}
		return items
	}
	line.AddSeries("fixed", toItems(fixed))
	line.AddSeries("marl", toItems(marl))
	return line
}

func renderCharts(path string, fixedPassed, marlPassed, fixedWait, marlWait []float64) error {
	page := components.NewPage()
	page.AddCharts(
		metricLine("vehicles passed per run", fixedPassed, marlPassed),
		metricLine("total wait time per run (s)", fixedWait, marlWait),
	)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return page.Render(f)
}

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})

	records, err := output.ReadRecords(*inputPath)
	if err != nil {
		log.Panicf("load records: %v", err)
	}
	if len(records) == 0 {
		log.Panicf("no records in %s", *inputPath)
	}
	log.Infof("loaded %d records from %s", len(records), *inputPath)

	fixedPassed, marlPassed, fixedWait, marlWait := splitByStrategy(records)

	passed, err := stats.Compare("vehicles_passed", fixedPassed, marlPassed, true)
	if err != nil {
		log.Panicf("compare vehicles_passed: %v", err)
	}
	passed.Log()
	wait, err := stats.Compare("wait_time", fixedWait, marlWait, false)
	if err != nil {
		log.Panicf("compare wait_time: %v", err)
	}
	wait.Log()

	if *chartsPath != "" {
		if err := renderCharts(*chartsPath, fixedPassed, marlPassed, fixedWait, marlWait); err != nil {
			log.Panicf("render charts: %v", err)
		}
		log.Infof("charts written to %s", *chartsPath)
	}
}
