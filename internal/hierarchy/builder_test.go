package hierarchy

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"vnadmin/internal/mapping"
	"vnadmin/internal/source"
)

var s = source.Str

func sampleRows() []source.Row {
	return []source.Row{
		{OldProvinceID: s("1"), OldProvinceName: s("Thành phố Hà Nội"), OldDistrictID: s("1"), OldDistrictName: s("Quận Ba Đình"), OldWardID: s("1"), OldWardName: s("Phường Phúc Xá"), NewProvinceID: s("1"), NewProvinceName: s("Thành phố Hà Nội"), NewWardID: s("4"), NewWardName: s("Phường Hồng Hà")},
		{OldProvinceID: s("1"), OldProvinceName: s("Thành phố Hà Nội"), OldDistrictID: s("1"), OldDistrictName: s("Quận Ba Đình"), OldWardID: s("4"), OldWardName: s("Phường Trúc Bạch"), NewProvinceID: s("1"), NewProvinceName: s("Thành phố Hà Nội"), NewWardID: s("8"), NewWardName: s("Phường Ba Đình")},
		{OldProvinceID: s("1"), OldProvinceName: s("Thành phố Hà Nội"), OldDistrictID: s("2"), OldDistrictName: s("Quận Hoàn Kiếm"), OldWardID: s("37"), OldWardName: s("Phường Phúc Tân"), NewProvinceID: s("1"), NewProvinceName: s("Thành phố Hà Nội"), NewWardID: s("4"), NewWardName: s("Phường Hồng Hà")},
		{OldProvinceID: s("2"), OldProvinceName: s("Tỉnh Hà Giang"), OldDistrictID: s("24"), OldDistrictName: s("Thành phố Hà Giang"), OldWardID: s("688"), OldWardName: s("Phường Quang Trung"), NewProvinceID: s("8"), NewProvinceName: s("Tỉnh Tuyên Quang"), NewWardID: s("2269"), NewWardName: s("Phường Hà Giang 2")},
		{OldProvinceID: s("1"), OldProvinceName: s("Thành phố Hà Nội"), OldDistrictID: s("1"), OldDistrictName: s("Quận Ba Đình"), OldWardID: s("1"), OldWardName: s("Phường Phúc Xá (dup)"), NewProvinceID: s("1"), NewProvinceName: s("Thành phố Hà Nội"), NewWardID: s("4"), NewWardName: s("Phường Hồng Hà")},
	}
}

func TestBuild_LevelsAndBuckets(t *testing.T) {
	tree := Build(sampleRows())

	require.Len(t, tree.Provinces, 2)
	require.Equal(t, "1", tree.Provinces[0].ID)
	require.Equal(t, "8", *tree.Provinces[1].NewID)

	require.Equal(t, []string{"1", "2"}, tree.DistrictsByProvince.Keys())
	hn, _ := tree.DistrictsByProvince.Get("1")
	require.Len(t, hn, 2)
	require.Equal(t, "Quận Ba Đình", *hn[0].Name)
	require.Equal(t, "Thành phố Hà Nội", *hn[0].ProvinceName)

	require.Equal(t, []string{"1", "2", "24"}, tree.WardsByDistrict.Keys())
	bd, _ := tree.WardsByDistrict.Get("1")
	require.Len(t, bd, 2)
	require.Equal(t, "Phường Phúc Xá", *bd[0].Name)
	require.Equal(t, "4", *bd[0].NewID)
	require.Empty(t, tree.Conflicts)

	require.Equal(t, Stats{Rows: 5, Provinces: 2, Districts: 3, Wards: 4, DistrictFiles: 2, WardFiles: 3}, tree.Stats)
}

func TestBuild_ShardPartitionMatchesMapping(t *testing.T) {
	rows := append(sampleRows(),
		source.Row{OldProvinceID: s("1"), OldWardID: s("900"), OldWardName: s("Phường Đội Cấn")},
		source.Row{OldProvinceID: s("1"), OldDistrictID: s("1"), OldWardID: s("900"), OldWardName: s("Phường Đội Cấn")},
	)
	tree := Build(rows)
	o2n, _ := mapping.Build(rows)

	owner := map[string]string{}
	tree.WardsByDistrict.Each(func(districtID string, wards []Ward) {
		for _, w := range wards {
			prev, dup := owner[w.ID]
			require.False(t, dup, "ward %s in shards %s and %s", w.ID, prev, districtID)
			owner[w.ID] = districtID
		}
	})

	var fromShards, fromMapping []string
	for id := range owner {
		fromShards = append(fromShards, id)
	}
	fromMapping = o2n.Wards.Keys()
	sort.Strings(fromShards)
	sort.Strings(fromMapping)
	require.Equal(t, fromMapping, fromShards)
}

func TestBuild_ConflictingParentIsReported(t *testing.T) {
	rows := []source.Row{
		{OldProvinceID: s("1"), OldDistrictID: s("10"), OldWardID: s("100")},
		{OldProvinceID: s("2"), OldDistrictID: s("10"), OldWardID: s("100")},
		{OldProvinceID: s("2"), OldDistrictID: s("11"), OldWardID: s("100")},
	}
	tree := Build(rows)

	require.Equal(t, []Conflict{
		{Level: LevelDistrict, ID: "10", Row: 2, KeptParent: "1", OtherParent: "2"},
		{Level: LevelWard, ID: "100", Row: 3, KeptParent: "10", OtherParent: "11"},
	}, tree.Conflicts)
	require.Equal(t, []string{"1", "2"}, tree.DistrictsByProvince.Keys())
	require.Equal(t, []string{"10"}, tree.WardsByDistrict.Keys())
	require.Equal(t, 2, tree.Stats.Conflicts)
}

func TestBuild_OrphansAreNotSharded(t *testing.T) {
	rows := []source.Row{
		{OldDistrictID: s("10"), OldDistrictName: s("No province")},
		{OldProvinceID: s("1"), OldWardID: s("100"), OldWardName: s("No district")},
	}
	tree := Build(rows)

	require.Equal(t, 0, tree.DistrictsByProvince.Len())
	require.Equal(t, 0, tree.WardsByDistrict.Len())
	require.Equal(t, 1, tree.Stats.OrphanDistricts)
	require.Equal(t, 1, tree.Stats.OrphanWards)
	require.Equal(t, 0, tree.Stats.Districts)
}

func TestBuild_OrphanLaterPlacedIsSharded(t *testing.T) {
	rows := []source.Row{
		{OldProvinceID: s("1"), OldWardID: s("100"), OldWardName: s("Phúc Xá")},
		{OldDistrictID: s("10"), OldDistrictName: s("Ba Đình")},
		{OldProvinceID: s("1"), OldDistrictID: s("10"), OldDistrictName: s("Ba Đình"), OldWardID: s("100"), OldWardName: s("Phúc Xá")},
		{OldProvinceID: s("1"), OldWardID: s("100")},
		{OldDistrictID: s("10")},
	}
	tree := Build(rows)

	require.Empty(t, tree.Conflicts)
	ds, _ := tree.DistrictsByProvince.Get("1")
	require.Len(t, ds, 1)
	require.Equal(t, "10", ds[0].ID)
	ws, _ := tree.WardsByDistrict.Get("10")
	require.Len(t, ws, 1)
	require.Equal(t, "100", ws[0].ID)
	require.Equal(t, "Ba Đình", *ws[0].DistrictName)

	require.Equal(t, 0, tree.Stats.OrphanDistricts)
	require.Equal(t, 0, tree.Stats.OrphanWards)
	require.Equal(t, 1, tree.Stats.Districts)
	require.Equal(t, 1, tree.Stats.Wards)
}
