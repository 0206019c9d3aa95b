package messaging

import "github.com/segmentio/kafka-go"

// Headers lets otel propagators read and write kafka message headers.
type Headers []kafka.Header

func (h *Headers) Get(key string) string {
	for _, kv := range *h {
		if kv.Key == key {
			return string(kv.Value)
		}
	}
	return ""
}

// Set replaces the value of an existing key.
func (h *Headers) Set(key, value string) {
	for i := range *h {
		if (*h)[i].Key == key {
			(*h)[i].Value = []byte(value)
			return
		}
	}
	*h = append(*h, kafka.Header{Key: key, Value: []byte(value)})
}

func (h *Headers) Keys() []string {
	keys := make([]string, 0, len(*h))
	for _, kv := range *h {
		keys = append(keys, kv.Key)
	}
	return keys
}
