//go:build integration

package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"ipguard/internal/platform/config"
	"ipguard/internal/platform/kafka/producer"
	"ipguard/pkg/testutil"
	"ipguard/pkg/testutil/containers"
)

func TestKafkaSinkIntegration(t *testing.T) {
	kc := containers.GetManager().GetKafka(t)
	const topic = "ipguard.notifications.test"

	p, err := producer.New(config.KafkaConfig{Brokers: kc.Brokers, Acks: "all"}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })

	sink, err := NewKafka(p, topic)
	require.NoError(t, err)

	ctx := context.Background()
	n := Notification{Kind: KindInvalid, Title: "Untrusted", Principal: testutil.TestIDs.Principal2}
	require.NoError(t, sink.Send(ctx, n))

	consumer, err := kc.NewConsumer(topic)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	rec := kc.WaitForRecord(ctx, consumer, 30*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == testutil.TestIDs.Principal2.String()
	})
	require.NotNil(t, rec)

	var got Notification
	require.NoError(t, json.Unmarshal(rec.Value, &got))
	require.Equal(t, KindInvalid, got.Kind)
}
