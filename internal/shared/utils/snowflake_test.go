package utils

import "testing"

func TestSnowflake_节点id越界(t *testing.T) {
	if _, err := NewSnowflake(-1); err == nil {
		t.Fatalf("期望负数节点 id 报错")
	}
	if _, err := NewSnowflake(maxNodeID + 1); err == nil {
		t.Fatalf("期望超上限节点 id 报错")
	}
}

func TestSnowflake_单调且不重复(t *testing.T) {
	gen, err := NewSnowflake(1)
	if err != nil {
		t.Fatalf("NewSnowflake: %v", err)
	}
	seen := make(map[int64]bool, 1000)
	var last int64 = -1
	for i := 0; i < 1000; i++ {
		id := gen.NextID()
		if id <= last {
			t.Fatalf("期望 id 单调递增，last=%d id=%d", last, id)
		}
		if seen[id] {
			t.Fatalf("期望 id 不重复，id=%d", id)
		}
		seen[id] = true
		last = id
	}
}
