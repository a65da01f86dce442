package config

type WorkerKeyStruct struct {
	BehaviorEventsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	BehaviorEventsQueue: "behavior_events_queue",
}
