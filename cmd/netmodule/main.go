package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/hw584/networkmodule"
	"github.com/kardianos/service"
	log "github.com/sirupsen/logrus"
)

type program struct {
	device     networkmodule.Device
	configFlag string
	execDir    string
}

func (p *program) Start(s service.Service) error {
	toTry := p.configFlag
	if toTry == "" {
		toTry = filepath.Join(p.execDir, "config.json")
		if !fileExists(toTry) {
			return os.ErrNotExist
		}
	}

	if err := p.device.LoadFromFile(toTry); err != nil {
		return err
	}
	log.Infoln("Using config file:", toTry)

	go func() {
		if err := p.device.Run(); err != nil {
			log.Fatal(err)
		}
	}()
	return nil
}

func (p *program) Stop(s service.Service) error {
	return p.device.Shutdown()
}

func main() {
	svcFlag := flag.String("service", "", "Control the system service.")
	cnfFlag := flag.String("c", "", "Path of config file.")
	flag.Parse()

	ePath, err := os.Executable()
	if err != nil {
		log.Fatal(err)
	}
	eDir, _ := filepath.Split(ePath)

	// Set defaults before config override.
	if service.Interactive() {
		log.SetLevel(log.DebugLevel)
	} else {
		f, err := os.OpenFile(filepath.Join(eDir, "netmodule.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatal(err)
		}
		log.SetOutput(f)
	}

	prg := program{configFlag: *cnfFlag, execDir: eDir}
	svcConfig := service.Config{
		Name:        "netmodule",
		DisplayName: "NetworkModule MQTT controller",
		Description: "Relay/sensor controller with Home Assistant MQTT auto-discovery.",
	}

	s, err := service.New(&prg, &svcConfig)
	if err != nil {
		log.Fatal(err)
	}

	if len(*svcFlag) != 0 {
		err := service.Control(s, *svcFlag)
		if err != nil {
			log.Printf("Valid actions: %q\n", service.ControlAction)
			log.Fatal(err)
		}
		return
	}

	err = s.Run()
	if err != nil {
		log.Fatal(err)
	}
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}
