package hub

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistryKeepsInsertionOrder(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"CO2", "acetylene", "EtOH"} {
		if err := reg.Register(name, componentRef(1, 2, 3)); err != nil {
			t.Fatalf("注册 %s 失败: %v", name, err)
		}
	}
	replacement := componentRef(9, 9, 9)
	if err := reg.Register("CO2", replacement); err != nil {
		t.Fatalf("覆盖注册失败: %v", err)
	}
	if diff := cmp.Diff([]string{"CO2", "acetylene", "EtOH"}, reg.List()); diff != "" {
		t.Fatalf("注册顺序不符 (-want +got):\n%s", diff)
	}
	ref, err := reg.Get("CO2")
	if err != nil {
		t.Fatalf("查找失败: %v", err)
	}
	pc, _ := ref.LookupData("Pc")
	if diff := cmp.Diff(replacement.Data["Pc"], pc); diff != "" {
		t.Fatalf("覆盖后应返回新 Reference:\n%s", diff)
	}
}

func TestRegistryRejectsInvalidInput(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("", componentRef(1, 2, 3)); err == nil {
		t.Fatalf("空名称应报错")
	}
	if err := reg.Register("CO2", nil); err == nil {
		t.Fatalf("nil Reference 应报错")
	}
	if reg.Len() != 0 {
		t.Fatalf("错误输入不应被存储")
	}
}

func TestRegistryGetAndRemoveNotFound(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Get("MeOH"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("期望 ErrNotFound，实际 %v", err)
	}
	if err := reg.Remove("MeOH"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("删除不存在组分应返回 ErrNotFound，实际 %v", err)
	}

	_ = reg.Register("a", componentRef(1, 2, 3))
	_ = reg.Register("b", componentRef(1, 2, 3))
	_ = reg.Register("c", componentRef(1, 2, 3))
	if err := reg.Remove("b"); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "c"}, reg.List()); diff != "" {
		t.Fatalf("删除后顺序不符:\n%s", diff)
	}
	_ = reg.Register("b", componentRef(1, 2, 3))
	if diff := cmp.Diff([]string{"a", "c", "b"}, reg.List()); diff != "" {
		t.Fatalf("重新注册应追加到末尾:\n%s", diff)
	}
}

func TestRegistryListReturnsCopy(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register("a", componentRef(1, 2, 3))
	list := reg.List()
	list[0] = "mutated"
	if reg.List()[0] != "a" {
		t.Fatalf("List 应返回副本")
	}
}
