// Package augment produces randomized geometric and photometric variants of
// images.
//
// # Pipeline
//
// [Augment] applies four stages in a fixed order. Each stage draws its own
// randomness, independently of the others and of previous calls:
//
//  1. Rotation: with probability RotateProbability, rotate counter-clockwise
//     by an integer angle drawn uniformly from [-MaxRotation, MaxRotation].
//  2. Horizontal flip: with probability FlipProbability.
//  3. Brightness: always; every channel is multiplied by a factor drawn
//     uniformly from [BrightnessMin, BrightnessMax] and clamped to [0, 255].
//  4. Contrast: always; every channel is moved away from (or towards) the
//     image's mean luma by a factor drawn uniformly from
//     [ContrastMin, ContrastMax], then clamped.
//
// # Canvas Policy
//
// Rotation never changes the canvas size. The rotated image is centred on a
// canvas with the original dimensions: corners that the rotation uncovers are
// filled with Params.Fill (opaque black by default) and corners that overhang
// the canvas are cropped.
//
// # Input Form
//
// Inputs must be opaque, non-empty rasters. Images with transparency are
// rejected rather than flattened; convert them first (see io.Canonical).
// The input is never modified and the output never shares pixel memory with it.
//
// # Randomness
//
// [Draw] turns a random source into a [Plan], and [Plan.Apply] executes it.
// [Augment] is Draw followed by Apply. Draw consumes, in order: the rotation
// decision, the angle (only when rotating), the flip decision, the brightness
// factor and the contrast factor.
//
// # Batches
//
// [Batch] runs N independent trials over a corpus, picking each trial's
// source image uniformly with replacement. Trials run on a bounded worker
// pool; every trial's source index and seed are drawn up front, so the output
// does not depend on scheduling.
package augment
