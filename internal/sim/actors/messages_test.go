package actors

import (
	"testing"
	"time"

	"VillageWars/modules/kit/tracex"
)

func TestTickVillage_上下文携带TraceID(t *testing.T) {
	msg := &TickVillage{VillageID: 1, Now: time.Now(), TraceID: "tick-trace-1"}
	got, ok := tracex.TraceIDFrom(msg.Context())
	if !ok || got != "tick-trace-1" {
		t.Fatalf("期望消息里的 trace_id 透传到 ctx, got=%q ok=%v", got, ok)
	}
}

func TestTickVillage_无TraceID时上下文干净(t *testing.T) {
	msg := &TickVillage{VillageID: 1, Now: time.Now()}
	if got, ok := tracex.TraceIDFrom(msg.Context()); ok {
		t.Fatalf("期望空 trace_id 不写入 ctx, got=%q", got)
	}
}
