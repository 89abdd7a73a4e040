// 随机数引擎，包装了golang.org/x/exp/rand，提供了一些常用的随机数生成方法
package randengine

import (
	"flag"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成功能，供生成器与RL探索使用
// 说明：基于golang.org/x/exp/rand库，提供更丰富的随机数生成接口
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 功能：初始化一个新的随机数引擎实例
// 参数：seed-随机数种子
// 返回：随机数引擎指针
// 说明：种子偏移量允许在不修改代码的情况下调整随机数序列
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// PTrue 以指定概率返回true
// 功能：根据给定概率返回布尔值
// 参数：p-返回true的概率（0.0到1.0之间）
// 返回：true或false
// 说明：实现伯努利分布，用于模拟概率事件（如ε-greedy探索）
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// Poisson 按泊松分布生成随机数
// 功能：生成参数为lambda的泊松分布随机数
// 参数：lambda-泊松分布均值（每步期望事件数）
// 返回：非负的事件数
// 说明：lambda不为正时直接返回0；底层采用gonum的distuv实现，
// 随机源复用本引擎以保证结果可复现
func (e *Engine) Poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: lambda, Src: e.Rand}.Rand())
}

// Perm 随机生成[0,n)的一个排列
// 功能：用于无偏的小批量抽样
// 参数：n-排列长度
// 返回：长度为n的随机排列
func (e *Engine) Perm(n int) []int {
	return e.Rand.Perm(n)
}
