package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host string
	Port string
}

// Rooms carries the business limits of the room store.
// TTLHours == 0 disables the expiry sweep.
type Rooms struct {
	DefaultCapacity int
	MaxCapacity     int
	TTLHours        int
	CleanupPeriod   int
}

type App struct {
	Name      string
	PublicURL string
}

type Config struct {
	HTTP  HTTPServer
	Rooms Rooms
	App   App
}

const logtag = "[config]"

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, *configPath)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg := &Config{
		HTTP:  *newHTTP(),
		Rooms: *newRooms(),
		App:   *newApp(),
	}

	log.Printf("%s backend config : %+v\n", logtag, cfg)
	return cfg
}

func newHTTP() *HTTPServer {
	return &HTTPServer{
		Port: getenv("HTTP_PORT", "8090"),
		Host: getenv("HTTP_HOST", "localhost"),
	}
}

func newRooms() *Rooms {
	return &Rooms{
		DefaultCapacity: getenvInt("ROOM_DEFAULT_CAPACITY", 10),
		MaxCapacity:     getenvInt("MAX_PARTICIPANTS_PER_ROOM", 20),
		TTLHours:        getenvInt("ROOM_EXPIRY_HOURS", 0),
		CleanupPeriod:   getenvInt("ROOM_CLEANUP_PERIOD", 20),
	}
}

func newApp() *App {
	return &App{
		Name:      getenv("APP_NAME", "Scrum Poker Backend"),
		PublicURL: getenv("PUBLIC_URL", "http://localhost:3030"),
	}
}

func getenv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s %s undefined. Using default value %s\n", logtag, key, defaultValue)
		return defaultValue
	}
	fmt.Printf("%s %s = %s\n", logtag, key, val)
	return val
}

func getenvInt(key string, defaultValue int) int {
	val := getenv(key, strconv.Itoa(defaultValue))
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("%s %s is not a number, using default %d", logtag, key, defaultValue)
		return defaultValue
	}
	return n
}
