// Package voxel defines the block type system: the closed BlockType enum,
// the static per-block registry table, and the world/chunk/local coordinate
// conversions shared by every other package that touches block data.
package voxel

// BlockType is an 8-bit tag identifying a block kind. Air is the canonical
// empty block and is always BlockType 0.
type BlockType uint8

const (
	Air BlockType = iota
	Stone
	Dirt
	Grass
	Sand
	Water
	Bedrock
	Wood
	Leaves
	StoneBrick
	PlanksOak
	Gravel
	Ore
	Torch
	Lava
	Cactus
	SnowBlock
	Ice
)

// BlockFace identifies one of the six faces of a block.
type BlockFace int

const (
	FaceEast BlockFace = iota // +X
	FaceWest                  // -X
	FaceTop                   // +Y
	FaceBottom                // -Y
	FaceNorth                 // +Z
	FaceSouth                 // -Z
)

// FaceNormal returns the integer normal vector for a face.
func FaceNormal(f BlockFace) (nx, ny, nz int) {
	switch f {
	case FaceEast:
		return 1, 0, 0
	case FaceWest:
		return -1, 0, 0
	case FaceTop:
		return 0, 1, 0
	case FaceBottom:
		return 0, -1, 0
	case FaceNorth:
		return 0, 0, 1
	case FaceSouth:
		return 0, 0, -1
	}
	return 0, 0, 0
}

// Definition is the static, per-kind metadata looked up from Registry.
// Behaviors are table lookups, never an inheritance hierarchy (spec §9).
type Definition struct {
	ID            BlockType
	Name          string
	Solid         bool
	Transparent   bool
	EmitsLight    bool
	LightLevel    uint8 // 0-15, only meaningful if EmitsLight
	Hardness      float32
	TintColor     uint32 // 0xRRGGBB, 0 = no tint
	TintFaces     [6]bool
	TextureTop    string
	TextureSide   string
	TextureBottom string
}

// Registry is the static block -> Definition table. Populated by init().
var Registry = map[BlockType]*Definition{}

// textureNames and textureIndex implement the stable texture-atlas ordering:
// the first-registered name for a texture string gets the lowest layer index.
var (
	textureNames []string
	textureIndex = map[string]int{}
)

func register(def *Definition) {
	Registry[def.ID] = def
	for _, tex := range []string{def.TextureTop, def.TextureSide, def.TextureBottom} {
		if tex == "" {
			continue
		}
		if _, ok := textureIndex[tex]; !ok {
			textureIndex[tex] = len(textureNames)
			textureNames = append(textureNames, tex)
		}
	}
}

func init() {
	register(&Definition{ID: Air, Name: "air", Transparent: true})
	register(&Definition{ID: Stone, Name: "stone", Solid: true, Hardness: 1.5,
		TextureTop: "stone.png", TextureSide: "stone.png", TextureBottom: "stone.png"})
	register(&Definition{ID: Dirt, Name: "dirt", Solid: true, Hardness: 0.5,
		TextureTop: "dirt.png", TextureSide: "dirt.png", TextureBottom: "dirt.png"})
	register(&Definition{ID: Grass, Name: "grass", Solid: true, Hardness: 0.6,
		TintColor: 0x7DFF5C, TintFaces: [6]bool{FaceTop: true},
		TextureTop: "grass_top.png", TextureSide: "grass_side.png", TextureBottom: "dirt.png"})
	register(&Definition{ID: Sand, Name: "sand", Solid: true, Hardness: 0.5,
		TextureTop: "sand.png", TextureSide: "sand.png", TextureBottom: "sand.png"})
	register(&Definition{ID: Water, Name: "water", Transparent: true, Hardness: -1,
		TextureTop: "water.png", TextureSide: "water.png", TextureBottom: "water.png"})
	register(&Definition{ID: Bedrock, Name: "bedrock", Solid: true, Hardness: -1,
		TextureTop: "bedrock.png", TextureSide: "bedrock.png", TextureBottom: "bedrock.png"})
	register(&Definition{ID: Wood, Name: "wood", Solid: true, Hardness: 2.0,
		TextureTop: "log_oak_top.png", TextureSide: "log_oak.png", TextureBottom: "log_oak_top.png"})
	register(&Definition{ID: Leaves, Name: "leaves", Solid: true, Transparent: true, Hardness: 0.2,
		TintColor: 0x6BBF4A, TintFaces: [6]bool{FaceTop: true, FaceBottom: true, FaceNorth: true, FaceSouth: true, FaceEast: true, FaceWest: true},
		TextureTop: "leaves_oak.png", TextureSide: "leaves_oak.png", TextureBottom: "leaves_oak.png"})
	register(&Definition{ID: StoneBrick, Name: "stonebrick", Solid: true, Hardness: 1.5,
		TextureTop: "stonebrick.png", TextureSide: "stonebrick.png", TextureBottom: "stonebrick.png"})
	register(&Definition{ID: PlanksOak, Name: "planks_oak", Solid: true, Hardness: 2.0,
		TextureTop: "planks_oak.png", TextureSide: "planks_oak.png", TextureBottom: "planks_oak.png"})
	register(&Definition{ID: Gravel, Name: "gravel", Solid: true, Hardness: 0.6,
		TextureTop: "gravel.png", TextureSide: "gravel.png", TextureBottom: "gravel.png"})
	register(&Definition{ID: Ore, Name: "ore_coal", Solid: true, Hardness: 3.0,
		TextureTop: "coal_ore.png", TextureSide: "coal_ore.png", TextureBottom: "coal_ore.png"})
	register(&Definition{ID: Torch, Name: "torch", Transparent: true, EmitsLight: true, LightLevel: 14, Hardness: 0,
		TextureTop: "torch_on.png", TextureSide: "torch_on.png", TextureBottom: "torch_on.png"})
	register(&Definition{ID: Lava, Name: "lava", EmitsLight: true, LightLevel: 15, Hardness: -1,
		TextureTop: "lava_still.png", TextureSide: "lava_still.png", TextureBottom: "lava_still.png"})
	register(&Definition{ID: Cactus, Name: "cactus", Solid: true, Transparent: true, Hardness: 0.4,
		TextureTop: "cactus_top.png", TextureSide: "cactus_side.png", TextureBottom: "cactus_bottom.png"})
	register(&Definition{ID: SnowBlock, Name: "snow", Solid: true, Hardness: 0.2,
		TextureTop: "snow.png", TextureSide: "snow.png", TextureBottom: "snow.png"})
	register(&Definition{ID: Ice, Name: "ice", Solid: true, Transparent: true, Hardness: 0.5,
		TextureTop: "ice.png", TextureSide: "ice.png", TextureBottom: "ice.png"})
}

// Def returns the Definition for a block type, or the Air definition if the
// type is unregistered (closed enum, so this should not happen in practice).
func Def(b BlockType) *Definition {
	if d, ok := Registry[b]; ok {
		return d
	}
	return Registry[Air]
}

func IsSolid(b BlockType) bool       { return Def(b).Solid }
func IsTransparent(b BlockType) bool { return Def(b).Transparent }
func EmitsLight(b BlockType) bool    { return Def(b).EmitsLight }
func LightLevel(b BlockType) uint8   { return Def(b).LightLevel }

// Occupies reports whether a block fills its cell with visible geometry.
// This is distinct from IsSolid: a fluid like water or lava occupies its
// cell and must be meshed, but has no physics collision (Solid: false), so
// the player's AABB passes through it. Everything but air occupies space.
func Occupies(b BlockType) bool { return b != Air }

// TextureLayer returns the atlas layer index for a block's given face.
// Missing textures fall back to layer 0 (the magenta placeholder is wired
// up by internal/assets, which always reserves layer 0 for it).
func TextureLayer(b BlockType, face BlockFace) int {
	def := Def(b)
	var name string
	switch face {
	case FaceTop:
		name = def.TextureTop
	case FaceBottom:
		name = def.TextureBottom
	default:
		name = def.TextureSide
	}
	if idx, ok := textureIndex[name]; ok {
		return idx
	}
	return 0
}

// TintFor returns the packed RGB tint for a block's face, or 0xFFFFFF (no
// visible tint) if the face isn't configured to tint.
func TintFor(b BlockType, face BlockFace) uint32 {
	def := Def(b)
	if def.TintColor != 0 && def.TintFaces[face] {
		return def.TintColor
	}
	return 0xFFFFFF
}

// FaceVisible reports whether a face between occupying block `a` (facing
// neighbor `n`) should be emitted, per spec §4.2: a occupies space and n
// either doesn't, or if both are transparent of different kinds. Same-kind
// transparent faces (water-water, lava-lava) are collapsed. Uses Occupies,
// not IsSolid, so non-solid fluids like water and lava still mesh their
// surface against air/other blocks instead of rendering as a hole.
func FaceVisible(a, n BlockType) bool {
	if !Occupies(a) {
		return false
	}
	if !Occupies(n) {
		return true
	}
	if IsTransparent(a) && IsTransparent(n) {
		return a != n
	}
	return IsTransparent(n)
}
