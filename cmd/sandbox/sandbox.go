package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	chaosnet "github.com/grinova/chaosnet-server"
	"github.com/jakecoffman/cp"
)

var (
	addr      = flag.String("p", "", "address to serve on, overrides CHAOSNET_ADDR")
	directory = flag.String("d", "", "directory of static files to host, overrides CHAOSNET_STATIC")
	headless  = flag.Bool("headless", false, "run a local peer with chaos enabled in every new room")
)

func main() {
	flag.Parse()

	config, err := chaosnet.LoadRelayConfig()
	if err != nil {
		log.Fatal(err)
	}
	if *addr != "" {
		config.Addr = *addr
	}
	if *directory != "" {
		config.StaticDir = *directory
	}

	relay := chaosnet.CreateRelay(config)

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	http.Handle("/", http.FileServer(http.Dir(config.StaticDir)))
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}
		create := r.URL.Query().Get("create") != ""
		roomCode := r.URL.Query().Get("room")
		id, room, err := relay.Connect(c, roomCode, create)
		if err != nil {
			c.Close()
			log.Println("connect:", err)
			return
		}
		log.Printf("peer connect: id = %s, room = %s\n", id, room)
		if create && *headless {
			go runHeadlessPeer(config.Addr, room)
		}
	})
	log.Printf("Serving %s on %s\n", config.StaticDir, config.Addr)
	log.Fatal(http.ListenAndServe(config.Addr, nil))
}

// runHeadlessPeer подключает к комнате серверного пира без экрана:
// он держит симуляцию и хаос живыми, даже когда игроки простаивают
func runHeadlessPeer(addr, room string) {
	transport, err := chaosnet.DialRoom("ws://localhost"+addr+"/ws", room)
	if err != nil {
		log.Println("headless:", err)
		return
	}
	feedback := &chaosnet.FeedbackListener{
		OnStatus: func(text string) {
			log.Printf("headless %s: %s\n", room, text)
		},
	}
	session, err := chaosnet.CreateSession(chaosnet.SessionDef{
		Transport: transport,
		Feedback:  feedback,
		World:     chaosnet.WorldDef{Width: 800, Height: 600, Gravity: &cp.Vector{X: 0, Y: 300}},
	})
	if err != nil {
		log.Println("headless:", err)
		return
	}
	defer session.Close()
	session.Do(func() {
		session.Chaos.EnableChaos()
	})
	session.Loop()
}
