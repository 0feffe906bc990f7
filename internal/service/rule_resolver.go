package service

import (
	"context"
	"fmt"
	"strings"

	"fetw-assistant/internal/config"
)

// Branch 规则匹配命中的分支
type Branch string

const (
	BranchGreeting    Branch = "greeting"
	BranchInstitution Branch = "institution"
	BranchHOD         Branch = "hod"
	BranchLocation    Branch = "location"
	BranchTopic       Branch = "topic"
	BranchFallback    Branch = "fallback"
)

// Topic 电子学术语表中的一项
type Topic struct {
	Keyword string
	Answer  string
}

// ECETopics 按匹配优先级排列，第一个被包含的关键词胜出
var ECETopics = []Topic{
	{"electronics", "Electronics is the branch of science and technology which deals with the flow and control of electrons in various media like vacuum, gas, and semiconductors."},
	{"resistor", "A Resistor is a passive electronic component that opposes the flow of electric current. It is measured in Ohms (Ω)."},
	{"capacitor", "A Capacitor is a device that stores electrical energy in an electric field. It is measured in Farads (F)."},
	{"inductor", "An Inductor is a passive component that stores energy in a magnetic field when electric current flows through it."},
	{"diode", "A Diode is a semiconductor device that allows current to flow in one direction only. It is commonly used for rectification."},
	{"transistor", "A Transistor is a semiconductor device used to amplify or switch electrical signals and power."},
	{"communication", "Communication Engineering involves the designing of systems for signal processing and transmission over long distances."},
	{"analog", "Analog communication uses continuous signals to transmit information, like AM and FM radio."},
	{"digital", "Digital communication uses discrete signals (0s and 1s) to transmit data, which is more reliable than analog."},
}

const (
	greetingReply = "Hello! I am your FETW Assistant. How can I help you today? You can ask me about the college or basic electronics topics like resistors, capacitors, etc."
	fallbackReply = "I'm a simple assistant designed for this project. I can help with information about FETW college, the ECE department, or basic concepts like resistors and capacitors. Please try asking about those!"
)

// RuleResolver 基于关键词的回复生成器
// 只看当前这条消息，不使用上下文窗口
type RuleResolver struct {
	college config.CollegeConfig
	topics  []Topic
}

// NewRuleResolver 创建 RuleResolver 实例
func NewRuleResolver(college config.CollegeConfig) *RuleResolver {
	return &RuleResolver{
		college: college,
		topics:  ECETopics,
	}
}

// Match 返回命中的分支和对应回复
// 子串匹配，大小写不敏感，按固定顺序判断
func (r *RuleResolver) Match(text string) (Branch, string) {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return BranchGreeting, greetingReply
	case strings.Contains(lower, "college") || strings.Contains(lower, "university"):
		return BranchInstitution, fmt.Sprintf(
			"You are asking about **%s**. It is located at %s. You can visit our official website at %s for more details.",
			r.college.Name, r.college.Location, r.college.Website,
		)
	case strings.Contains(lower, "hod"):
		return BranchHOD, fmt.Sprintf("The Head of the Department (HOD) for ECE at FETW is **%s**.", r.college.HOD)
	case strings.Contains(lower, "location") || strings.Contains(lower, "where"):
		return BranchLocation, fmt.Sprintf("Our campus is located at: **%s**.", r.college.Location)
	}

	for _, topic := range r.topics {
		if strings.Contains(lower, topic.Keyword) {
			return BranchTopic, topic.Answer
		}
	}
	return BranchFallback, fallbackReply
}

// Resolve 实现 Resolver 接口，规则匹配不会失败
func (r *RuleResolver) Resolve(_ context.Context, text string, _ []Turn) (string, error) {
	_, reply := r.Match(text)
	return reply, nil
}
