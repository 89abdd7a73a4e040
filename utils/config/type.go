package config

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 模拟器控制配置
// 功能：定义仿真系统的核心控制参数
type Control struct {
	Step ControlStep `yaml:"step"`
	Seed uint64      `yaml:"seed,omitempty"` // 随机数种子
}

// World 仿真场景配置
// 功能：定义可见区域尺寸与道路布局参数
// 说明：路网为 Roads×Roads 的均匀网格，第i条道路中心位置为 i*W/(n+1)
type World struct {
	Width        float64 `yaml:"width"`                   // 可见区域宽度
	Height       float64 `yaml:"height"`                  // 可见区域高度
	Roads        int     `yaml:"roads"`                   // 每个方向的道路条数
	RoadWidth    float64 `yaml:"road_width"`              // 道路宽度
	VehicleSpeed float64 `yaml:"vehicle_speed,omitempty"` // 车辆标称速度
}

// Spawning 车辆生成配置
// 功能：定义四个边界的泊松到达率（辆/秒）
type Spawning struct {
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
}

// Lights 信号灯配置
// 功能：定义信控策略与固定相位时长
// 说明：Controller为封闭枚举（fixed|marl），未知取值在构造时报错；
// Positions为可选的显式路口坐标列表，缺省时按道路网格推导
type Lights struct {
	Controller  string      `yaml:"controller"`
	GreenTime   float64     `yaml:"green_time,omitempty"`
	YellowTime  float64     `yaml:"yellow_time,omitempty"`
	RedTime     float64     `yaml:"red_time,omitempty"`
	MinDuration float64     `yaml:"min_duration,omitempty"` // MARL最短驻留时间
	MaxDuration float64     `yaml:"max_duration,omitempty"` // MARL最长驻留时间
	Positions   [][]float64 `yaml:"positions,omitempty"`    // 显式路口坐标（[x,y]）
}

// Output 指定运行记录输出的配置项
// 功能：定义指标记录的JSON文件输出与可选的MongoDB输出
type Output struct {
	File string `yaml:"file,omitempty"` // JSON结果文件路径，为空则禁用
	URI  string `yaml:"uri,omitempty"`  // MongoDB连接字符串，为空则禁用
	DB   string `yaml:"db,omitempty"`   // 数据库名
	Col  string `yaml:"col,omitempty"`  // 集合名
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
type Config struct {
	Control  Control  `yaml:"control"`
	World    World    `yaml:"world"`
	Spawning Spawning `yaml:"spawning"`
	Lights   Lights   `yaml:"lights"`
	Output   Output   `yaml:"output"`
}
