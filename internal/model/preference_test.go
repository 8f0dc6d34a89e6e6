package model

import (
	"reflect"
	"testing"
)

func TestMessagePreferences_SetCadence(t *testing.T) {
	var p MessagePreferences

	p.SetCadence([]int{0, 2, 7})
	if !p.DaysAhead0 || p.DaysAhead1 || !p.DaysAhead2 || p.DaysAhead3 || !p.DaysAhead7 {
		t.Errorf("开关设置不符: %+v", p)
	}

	// 不支持的天数被忽略，整体覆盖旧值
	p.SetCadence([]int{1, 5})
	if p.DaysAhead0 || !p.DaysAhead1 || p.DaysAhead2 || p.DaysAhead7 {
		t.Errorf("二次设置应整体覆盖: %+v", p)
	}
}

func TestMessagePreferences_Cadence(t *testing.T) {
	p := MessagePreferences{DaysAhead1: true, DaysAhead3: true}

	if got := p.Cadence(); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("期望 [1 3]，实际: %v", got)
	}

	var empty MessagePreferences
	if got := empty.Cadence(); len(got) != 0 {
		t.Errorf("全关时应返回空列表: %v", got)
	}
}
