package chaosnet

type synchronizer interface {
	sync(v interface{})
}

type clients map[string]*Client

type broadcast struct {
	clients
}

func (s *broadcast) sync(v interface{}) {
	for _, client := range s.clients {
		client.sync(v)
	}
}

type except struct {
	*broadcast
	exceptID string
}

func (s *except) sync(v interface{}) {
	for id, client := range s.clients {
		if id != s.exceptID {
			client.sync(v)
		}
	}
}

type target struct {
	*broadcast
	targetID string
}

func (s *target) sync(v interface{}) {
	if client, ok := s.clients[s.targetID]; ok {
		client.sync(v)
	}
}

type eventSync struct {
	parent synchronizer
}

func (s *eventSync) sync(v interface{}) {
	s.parent.sync(message{Type: messageTypeEvent, Data: v})
}

type systemSync struct {
	parent synchronizer
	id     string
}

func (s *systemSync) sync(v interface{}) {
	s.parent.sync(message{Type: messageTypeSystem, Data: route{ID: s.id, Data: v}})
}
