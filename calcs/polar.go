package calcs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/CodedInternet/gonao/onboard/perceptor"
)

// PolarToCartesian converts a vision bearing to camera relative x, y, z: x
// straight ahead, y to the left and z up.
func PolarToCartesian(p perceptor.Polar) mgl64.Vec3 {
	theta := mgl64.DegToRad(p.Horizontal)
	phi := mgl64.DegToRad(p.Vertical)

	return mgl64.Vec3{
		p.Distance * math.Cos(phi) * math.Cos(theta),
		p.Distance * math.Cos(phi) * math.Sin(theta),
		p.Distance * math.Sin(phi),
	}
}
