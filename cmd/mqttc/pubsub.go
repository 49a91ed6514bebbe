package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/axmq/mqttc/api"
	"github.com/axmq/mqttc/codec"
	"github.com/axmq/mqttc/route"
)

// subscriptionsFromFlags builds the Subscribe command's filter list from
// repeated --topic flags, all at the --qos flag's level. Invalid filters
// are dropped with a warning to stderr rather than aborting the whole
// command: a typo in one filter shouldn't block the others.
func subscriptionsFromFlags(cmd *cli.Command) []api.TopicFilter {
	qos := qosFromFlag(cmd)
	var subs []api.TopicFilter
	for _, topic := range cmd.StringSlice("topic") {
		if err := route.ValidateTopicFilter(topic); err != nil {
			fmt.Fprintf(os.Stderr, "mqttc: skipping invalid topic filter %q: %v\n", topic, err)
			continue
		}
		subs = append(subs, api.TopicFilter{Filter: topic, QoS: qos})
	}
	return subs
}

// publishFromFlags builds a one-shot Publish command from --publish-topic
// and --publish-payload, or nil if --publish-topic was not given.
func publishFromFlags(cmd *cli.Command) *api.PublishParams {
	topic := cmd.String("publish-topic")
	if topic == "" {
		return nil
	}
	if err := route.ValidateTopicName(topic); err != nil {
		fmt.Fprintf(os.Stderr, "mqttc: invalid publish topic %q: %v\n", topic, err)
		return nil
	}
	return &api.PublishParams{
		Topic:   topic,
		Payload: []byte(cmd.String("publish-payload")),
		QoS:     qosFromFlag(cmd),
	}
}

// qosFromFlag clamps the --qos flag into a valid codec.QoS, defaulting to
// AtMostOnce for anything out of range rather than failing the command.
func qosFromFlag(cmd *cli.Command) codec.QoS {
	q := cmd.Int("qos")
	if q < 0 || q > 2 {
		return codec.AtMostOnce
	}
	return codec.QoS(q)
}
