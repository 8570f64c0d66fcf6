package app

import (
	"github.com/frc-5160-the-chargers/gocommand/internal/registry"
	"github.com/frc-5160-the-chargers/gocommand/modules/drivetrain"
	"github.com/frc-5160-the-chargers/gocommand/modules/elevator"
	"github.com/frc-5160-the-chargers/gocommand/modules/logmsg"
)

// coreModules is the definitive list of all modules that are compiled into
// the gocommand binary.
var coreModules = []registry.Module{
	&drivetrain.Module{},
	&elevator.Module{},
	&logmsg.Module{},
}
