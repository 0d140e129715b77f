package assets

// Role is a closed set of sprite slots the presentation layer draws.
type Role int

const (
	RoleDanceClean01 Role = iota
	RoleDanceClean02
	RoleDanceClean03
	RoleHitReact01
	RoleHitReact02
	RoleHitReact03
	RolePerfectPop
	RoleShadowBlob
	RoleSpotlight
	RoleCensorSlam
	RoleVictorySubtext
	RoleSharkFin
	RoleNanaCheese
	RoleIcedTea
	RoleTitleScreen
	RolePWAGuide
	RolePartyHat
	RoleBowtie
	RoleSweater

	roleCount
)

type roleSpec struct {
	name     string
	aliases  []string // tried in order when name is absent
	fallback string   // used when neither name nor aliases resolve
}

var roleSpecs = [roleCount]roleSpec{
	RoleDanceClean01:   {name: "dance_clean_01", aliases: []string{"dexter_dance_01", "dexter_joyful"}},
	RoleDanceClean02:   {name: "dance_clean_02", aliases: []string{"dexter_dance_02", "dexter_proud"}},
	RoleDanceClean03:   {name: "dance_clean_03", aliases: []string{"dexter_dance_03", "dexter_joyful"}},
	RoleHitReact01:     {name: "hit_react_01", fallback: "/assets/sprites/hit/dex_hit_react_01.png"},
	RoleHitReact02:     {name: "hit_react_02", fallback: "/assets/sprites/hit/dex_hit_react_02.png"},
	RoleHitReact03:     {name: "hit_react_03", fallback: "/assets/sprites/hit/dex_hit_react_03.png"},
	RolePerfectPop:     {name: "perfect_pop", fallback: "/assets/sprites/ui/dex_perfect_pop.png"},
	RoleShadowBlob:     {name: "shadow_blob", fallback: "/assets/sprites/ui/shadow_blob.png"},
	RoleSpotlight:      {name: "spotlight_vignette", fallback: "/assets/sprites/ui/spotlight_vignette.png"},
	RoleCensorSlam:     {name: "censor_slam", fallback: "/assets/sprites/ui/censor_slam.png"},
	RoleVictorySubtext: {name: "victory_subtext", fallback: "/assets/sprites/ui/victory_subtext.png"},
	RoleSharkFin:       {name: "hazard_shark_fin", fallback: "/assets/sprites/items/hazard_shark_fin.png"},
	RoleNanaCheese:     {name: "item_nana_cheese", fallback: "/assets/sprites/items/item_nana_cheese.png"},
	RoleIcedTea:        {name: "item_unsweetened_iced_tea", fallback: "/assets/sprites/items/item_unsweetened_iced_tea.png"},
	RoleTitleScreen:    {name: "title_screen"},
	RolePWAGuide:       {name: "pwa_guide"},
	RolePartyHat:       {name: "overlay_party_hat", fallback: "/assets/sprites/overlay/party_hat.png"},
	RoleBowtie:         {name: "overlay_bowtie", fallback: "/assets/sprites/overlay/bowtie.png"},
	RoleSweater:        {name: "overlay_birthday_sweater", fallback: "/assets/sprites/overlay/birthday_sweater.png"},
}

func (r Role) String() string {
	if r < 0 || r >= roleCount {
		return "unknown"
	}
	return roleSpecs[r].name
}

// Roles returns every role in declaration order.
func Roles() []Role {
	out := make([]Role, roleCount)
	for i := range out {
		out[i] = Role(i)
	}
	return out
}
